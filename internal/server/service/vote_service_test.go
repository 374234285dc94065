package service

import (
	"context"
	"testing"
	"time"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newVoteService(db *gorm.DB) *VoteService {
	return NewVoteService(repository.NewVoteRepository(db), repository.NewElectionRepository(db))
}

func TestCastVoteStoresBallot(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)

	svc := newVoteService(db)
	vote, err := svc.CastVote(context.Background(), election.ID, 42, []models.VoteChoice{
		{PositionID: 2, CandidateID: 7},
		{PositionID: 1, CandidateID: 4},
	})
	require.NoError(t, err)
	require.NotNil(t, vote)
	require.NotZero(t, vote.ID)

	stored := reloadVote(t, db, vote.ID)
	assert.Equal(t, uint(42), stored.StudentID)
	assert.Len(t, stored.Details, 2)
	// Freshly cast, the seal comes later through the queue.
	assert.False(t, stored.Sealed())
	assert.False(t, stored.Tallied)
}

func TestCastVoteAllowsEmptyBallot(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)

	vote, err := newVoteService(db).CastVote(context.Background(), election.ID, 42, nil)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Empty(t, reloadVote(t, db, vote.ID).Details)
}

func TestCastVoteRejectsClosedElection(t *testing.T) {
	db := setupTestDB(t)
	now := time.Now()
	for _, status := range []models.ElectionStatus{
		models.StatusDraft,
		models.StatusUpcoming,
		models.StatusEnded,
		models.StatusFinalized,
		models.StatusCompromised,
	} {
		election := createElection(t, db, status, now.Add(-time.Hour), now.Add(time.Hour))
		_, err := newVoteService(db).CastVote(context.Background(), election.ID, 42, nil)
		assert.ErrorIs(t, err, models.ErrElectionNotOpen, "status %s", status)
	}
}

func TestCastVoteRejectsSecondBallot(t *testing.T) {
	db := setupTestDB(t)
	election := createOngoingElection(t, db)
	svc := newVoteService(db)

	_, err := svc.CastVote(context.Background(), election.ID, 42, nil)
	require.NoError(t, err)

	_, err = svc.CastVote(context.Background(), election.ID, 42, nil)
	assert.ErrorIs(t, err, models.ErrAlreadyVoted)

	// The same student may still vote in a different election.
	other := createOngoingElection(t, db)
	_, err = svc.CastVote(context.Background(), other.ID, 42, nil)
	require.NoError(t, err)
}

func TestCastVoteMissingElection(t *testing.T) {
	db := setupTestDB(t)
	vote, err := newVoteService(db).CastVote(context.Background(), 9999, 42, nil)
	require.NoError(t, err)
	assert.Nil(t, vote)
}
