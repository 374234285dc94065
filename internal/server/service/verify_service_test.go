package service

import (
	"context"
	"testing"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func sealChain(t *testing.T, db *gorm.DB, voteIDs ...uint) {
	t.Helper()
	sealer := NewSealerService(repository.NewVoteRepository(db), nil, nil)
	for _, id := range voteIDs {
		require.NoError(t, sealer.Seal(context.Background(), id))
	}
}

// tamper edits a ledger column with raw SQL, going around the entity
// guards the way a direct database intrusion would.
func tamper(t *testing.T, db *gorm.DB, query string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(query, args...).Error)
}

func TestVerifyElectionEmptyChainIsValid(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 0, result.TotalVotes)
	assert.Nil(t, result.FinalHash)
}

func TestVerifyElectionValidChain(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v2 := castBallot(t, db, election.ID, 2, models.VoteChoice{PositionID: 1, CandidateID: 3})
	v3 := castBallot(t, db, election.ID, 3)
	sealChain(t, db, v1.ID, v2.ID, v3.ID)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.TotalVotes)
	require.NotNil(t, result.FinalHash)
	assert.Equal(t, *reloadVote(t, db, v3.ID).CurrentHash, *result.FinalHash)
}

func TestVerifyElectionDetectsTamperedChoice(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v2 := castBallot(t, db, election.ID, 2, models.VoteChoice{PositionID: 1, CandidateID: 3})
	sealChain(t, db, v1.ID, v2.ID)

	tamper(t, db, "UPDATE vote_details SET candidate_id = 9 WHERE vote_id = ?", v1.ID)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, v1.ID, result.VoteID)
	assert.Equal(t, ReasonPayloadMismatch, result.Reason)
	assert.Equal(t, 2, result.TotalVotes)
}

func TestVerifyElectionDetectsTamperedPreviousHash(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v2 := castBallot(t, db, election.ID, 2, models.VoteChoice{PositionID: 1, CandidateID: 3})
	sealChain(t, db, v1.ID, v2.ID)

	tamper(t, db, "UPDATE votes SET previous_hash = ? WHERE id = ?", "deadbeef", v2.ID)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, v2.ID, result.VoteID)
	assert.Equal(t, ReasonPreviousMismatch, result.Reason)
}

func TestVerifyElectionDetectsTamperedCurrentHash(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	sealChain(t, db, v1.ID)

	tamper(t, db, "UPDATE votes SET current_hash = ? WHERE id = ?", "deadbeef", v1.ID)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonCurrentMismatch, result.Reason)
}

func TestVerifyElectionReportsUnsealedVote(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v2 := castBallot(t, db, election.ID, 2, models.VoteChoice{PositionID: 1, CandidateID: 3})
	sealChain(t, db, v1.ID)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, v2.ID, result.VoteID)
	assert.Equal(t, ReasonNotSealed, result.Reason)
}

func TestVerifyElectionCaches(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	sealChain(t, db, v1.ID)

	cache := newFakeCache()
	verify := NewVerifyService(repository.NewVoteRepository(db), cache)

	first, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Second call is served from the cache even if the store changes
	// underneath.
	tamper(t, db, "UPDATE votes SET current_hash = ? WHERE id = ?", "deadbeef", v1.ID)
	second, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)

	// Invalidation forces a fresh replay, which now sees the tampering.
	cache.Invalidate(context.Background(), election.ID)
	third, err := verify.VerifyElection(context.Background(), election.ID)
	require.NoError(t, err)
	assert.False(t, third.Valid)
}

func TestVerifyVote(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	v1 := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})
	v2 := castBallot(t, db, election.ID, 2, models.VoteChoice{PositionID: 1, CandidateID: 3})
	sealChain(t, db, v1.ID, v2.ID)

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)

	result, err := verify.VerifyVote(context.Background(), election.ID, v2.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Valid)
	assert.Equal(t, *reloadVote(t, db, v1.ID).CurrentHash, result.PreviousHash)

	// A vote id outside the election yields no verdict at all.
	missing, err := verify.VerifyVote(context.Background(), election.ID+1, v2.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVerifyVoteUnsealed(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	vote := castBallot(t, db, election.ID, 1, models.VoteChoice{PositionID: 1, CandidateID: 2})

	verify := NewVerifyService(repository.NewVoteRepository(db), nil)
	result, err := verify.VerifyVote(context.Background(), election.ID, vote.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonNotSealed, result.Reason)
}
