package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prpatrol/prpatrol/internal/domain/model"
)

func TestCycleRepo_InsertAndGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCycleRepo(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, model.ReviewCycle{
		RepoFullName:    "owner/repo",
		PRNumber:        7,
		Outcome:         model.OutcomeAccepted,
		Summary:         "looks good",
		CommentsPosted:  3,
		CommentsDropped: 1,
		CreatedAt:       time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Positive(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "owner/repo", got.RepoFullName)
	assert.Equal(t, 7, got.PRNumber)
	assert.Equal(t, model.OutcomeAccepted, got.Outcome)
	assert.Equal(t, "looks good", got.Summary)
	assert.Equal(t, 3, got.CommentsPosted)
	assert.Equal(t, 1, got.CommentsDropped)
	assert.Empty(t, got.Error)
	assert.Equal(t, 2026, got.CreatedAt.Year())
}

func TestCycleRepo_GetByID_AbsentIsNilNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCycleRepo(db)

	got, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCycleRepo_InsertDefaultsCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCycleRepo(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, model.ReviewCycle{
		RepoFullName: "owner/repo",
		PRNumber:     1,
		Outcome:      model.OutcomeSkipped,
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCycleRepo_ListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCycleRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i := range 5 {
		_, err := repo.Insert(ctx, model.ReviewCycle{
			RepoFullName: "owner/repo",
			PRNumber:     i + 1,
			Outcome:      model.OutcomeAccepted,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	cycles, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, cycles, 3)

	// Newest first.
	assert.Equal(t, 5, cycles[0].PRNumber)
	assert.Equal(t, 4, cycles[1].PRNumber)
	assert.Equal(t, 3, cycles[2].PRNumber)
}

func TestCycleRepo_RejectedCycleKeepsError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCycleRepo(db)
	ctx := context.Background()

	id, err := repo.Insert(ctx, model.ReviewCycle{
		RepoFullName: "owner/repo",
		PRNumber:     2,
		Outcome:      model.OutcomeRejected,
		Error:        "review submission failed",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.OutcomeRejected, got.Outcome)
	assert.Equal(t, "review submission failed", got.Error)
}
