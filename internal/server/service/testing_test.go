package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	return db
}

func createElection(t *testing.T, db *gorm.DB, status models.ElectionStatus, start, end time.Time) *models.Election {
	t.Helper()
	election := &models.Election{
		Title:   "Student Council",
		Status:  status,
		Setting: &models.ElectionSetting{StartTime: start, EndTime: end},
	}
	require.NoError(t, repository.NewElectionRepository(db).Create(context.Background(), election))
	return election
}

func createOngoingElection(t *testing.T, db *gorm.DB) *models.Election {
	t.Helper()
	now := time.Now()
	return createElection(t, db, models.StatusOngoing, now.Add(-time.Hour), now.Add(time.Hour))
}

func castBallot(t *testing.T, db *gorm.DB, electionID, studentID uint, choices ...models.VoteChoice) *models.Vote {
	t.Helper()
	vote := &models.Vote{ElectionID: electionID, StudentID: studentID}
	for _, choice := range choices {
		vote.Details = append(vote.Details, models.VoteDetail{
			PositionID:  choice.PositionID,
			CandidateID: choice.CandidateID,
		})
	}
	require.NoError(t, repository.NewVoteRepository(db).CastVote(context.Background(), vote))
	return vote
}

func reloadVote(t *testing.T, db *gorm.DB, voteID uint) *models.Vote {
	t.Helper()
	vote, err := repository.NewVoteRepository(db).GetWithDetails(context.Background(), voteID)
	require.NoError(t, err)
	require.NotNil(t, vote)
	return vote
}

func reloadElection(t *testing.T, db *gorm.DB, electionID uint) *models.Election {
	t.Helper()
	election, err := repository.NewElectionRepository(db).GetWithSetting(context.Background(), electionID)
	require.NoError(t, err)
	require.NotNil(t, election)
	return election
}

// fakeProducer records published job ids instead of talking to Kafka.
type fakeProducer struct {
	mu        sync.Mutex
	seals     []uint
	tallies   []uint
	finalizes []uint
}

func (f *fakeProducer) PublishSealVote(_ context.Context, voteID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seals = append(f.seals, voteID)
	return nil
}

func (f *fakeProducer) PublishTallyVote(_ context.Context, voteID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tallies = append(f.tallies, voteID)
	return nil
}

func (f *fakeProducer) PublishFinalizeElection(_ context.Context, electionID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizes = append(f.finalizes, electionID)
	return nil
}

// fakeCache is an in-memory VerificationCache standing in for redis.
type fakeCache struct {
	mu          sync.Mutex
	store       map[uint]*models.ElectionVerification
	invalidated []uint
	sets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[uint]*models.ElectionVerification)}
}

func (c *fakeCache) Get(_ context.Context, electionID uint) (*models.ElectionVerification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	result, ok := c.store[electionID]
	return result, ok
}

func (c *fakeCache) Set(_ context.Context, electionID uint, result *models.ElectionVerification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[electionID] = result
	c.sets++
}

func (c *fakeCache) Invalidate(_ context.Context, electionID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, electionID)
	c.invalidated = append(c.invalidated, electionID)
}

// fakeArchiver captures manifests instead of uploading to MinIO.
type fakeArchiver struct {
	manifests []*models.ChainManifest
}

func (a *fakeArchiver) ArchiveManifest(_ context.Context, manifest *models.ChainManifest) error {
	a.manifests = append(a.manifests, manifest)
	return nil
}
