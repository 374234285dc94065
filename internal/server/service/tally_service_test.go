package service

import (
	"context"
	"sync"
	"testing"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyIncrementsEachChosenCandidate(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	vote := castBallot(t, db, election.ID, 1,
		models.VoteChoice{PositionID: 1, CandidateID: 2},
		models.VoteChoice{PositionID: 2, CandidateID: 5},
	)

	tally := NewTallyService(db)
	require.NoError(t, tally.Tally(context.Background(), vote.ID))

	results := repository.NewResultRepository(db)
	r1, err := results.Get(context.Background(), election.ID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, r1)
	assert.Equal(t, uint(1), r1.VoteCount)

	r2, err := results.Get(context.Background(), election.ID, 2, 5)
	require.NoError(t, err)
	require.NotNil(t, r2)
	assert.Equal(t, uint(1), r2.VoteCount)

	assert.True(t, reloadVote(t, db, vote.ID).Tallied)
}

func TestTallyRedeliveryCountsOnce(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	vote := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})

	tally := NewTallyService(db)
	require.NoError(t, tally.Tally(context.Background(), vote.ID))
	require.NoError(t, tally.Tally(context.Background(), vote.ID))
	require.NoError(t, tally.Tally(context.Background(), vote.ID))

	result, err := repository.NewResultRepository(db).Get(context.Background(), election.ID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(1), result.VoteCount)
}

func TestTallyConcurrentRedeliveryCountsOnce(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	vote := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})

	tally := NewTallyService(db)
	require.NoError(t, tally.Tally(context.Background(), vote.ID))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Contended re-runs may fail on a busy store; what matters
			// is that none of them double counts.
			_ = tally.Tally(context.Background(), vote.ID)
		}()
	}
	wg.Wait()

	result, err := repository.NewResultRepository(db).Get(context.Background(), election.ID, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(1), result.VoteCount)
}

func TestTallyAccumulatesAcrossVotes(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v2 := castBallot(t, db, election.ID, 2, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v3 := castBallot(t, db, election.ID, 3, models.VoteChoice{PositionID: 1, CandidateID: 3})

	tally := NewTallyService(db)
	for _, id := range []uint{v1.ID, v2.ID, v3.ID} {
		require.NoError(t, tally.Tally(context.Background(), id))
	}

	results, err := repository.NewResultRepository(db).ListByElection(context.Background(), election.ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, uint(2), results[0].CandidateID)
	assert.Equal(t, uint(2), results[0].VoteCount)
	assert.Equal(t, uint(3), results[1].CandidateID)
	assert.Equal(t, uint(1), results[1].VoteCount)
}

func TestTallyFullAbstention(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	vote := castBallot(t, db, election.ID, 1)

	tally := NewTallyService(db)
	require.NoError(t, tally.Tally(context.Background(), vote.ID))

	results, err := repository.NewResultRepository(db).ListByElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, reloadVote(t, db, vote.ID).Tallied)
}

func TestTallyMissingVoteIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	tally := NewTallyService(db)
	require.NoError(t, tally.Tally(context.Background(), 9999))
}
