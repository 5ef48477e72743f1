package repository_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/testing/suite"
)

func TestOutcomes(t *testing.T) {
	ctx, st := suite.WithPostgres(t)
	q := repository.New(st.Postgres)

	// Given
	first := repository.RecordOutcomeParams{
		GameID: uuid.NewString(), Width: 9, Height: 9, MineCount: 10,
		Won: true, Elapsed: 42 * time.Second,
	}
	second := repository.RecordOutcomeParams{
		GameID: uuid.NewString(), Width: 4, Height: 4, MineCount: 3,
		Won: false, Elapsed: 1500 * time.Millisecond,
	}

	// When
	o1, err := q.RecordOutcome(ctx, first)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = q.RecordOutcome(ctx, second)
	require.NoError(t, err)

	// Then
	assert.Equal(t, first.GameID, o1.GameID)
	assert.Equal(t, int64(42000), o1.ElapsedMs)
	assert.True(t, o1.Won)

	_, err = q.RecordOutcome(ctx, first)
	assert.ErrorIs(t, err, repository.ErrOutcomeExists)

	all, err := q.ListOutcomes(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.GameID, all[0].GameID)
	assert.Equal(t, first.GameID, all[1].GameID)

	one, err := q.ListOutcomes(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestOutcomeRounds(t *testing.T) {
	ctx, st := suite.WithPostgres(t)
	q := repository.New(st.Postgres)

	// Given
	id := uuid.NewString()
	params := repository.RecordOutcomeParams{GameID: id, Width: 3, Height: 3, MineCount: 1}

	// When
	_, err := q.RecordOutcome(ctx, params)
	require.NoError(t, err)
	params.Round = 1
	params.Won = true
	second, err := q.RecordOutcome(ctx, params)

	// Then
	require.NoError(t, err)
	assert.Equal(t, 1, second.Round)

	_, err = q.RecordOutcome(ctx, params)
	assert.ErrorIs(t, err, repository.ErrOutcomeExists)

	all, err := q.ListOutcomes(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
