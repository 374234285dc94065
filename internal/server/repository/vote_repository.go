package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"election-service/internal/ports/models"

	"gorm.io/gorm"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// IsDuplicateKey reports whether err is a unique constraint violation.
// Checked by string for the MySQL and sqlite drivers since neither is
// opened with GORM error translation.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

// CastVote stores a ballot and its choices in one transaction. The
// unique (election_id, student_id) index keeps it to one vote per
// student at the store level.
func (r *VoteRepository) CastVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(vote).Error
	})
}

// GetWithDetails fetches one vote and its choices, nil when absent.
func (r *VoteRepository) GetWithDetails(ctx context.Context, voteID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).Preload("Details").First(&vote, voteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// GetInElection fetches one vote scoped to an election, nil when it
// does not exist there.
func (r *VoteRepository) GetInElection(ctx context.Context, electionID, voteID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("election_id = ?", electionID).
		First(&vote, voteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ListByElection returns every vote of an election in chain order
// (ascending sequence id) with choices preloaded.
func (r *VoteRepository) ListByElection(ctx context.Context, electionID uint) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("election_id = ?", electionID).
		Order("id ASC").
		Find(&votes).Error
	return votes, err
}

// LastVote returns the chain's newest vote, nil for an empty election.
func (r *VoteRepository) LastVote(ctx context.Context, electionID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("id DESC").
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// PreviousCurrentHash returns the stored current hash of the vote that
// precedes voteID in the election's chain, empty for the first vote or
// when the predecessor is itself unsealed.
func (r *VoteRepository) PreviousCurrentHash(ctx context.Context, electionID, voteID uint) (string, error) {
	var prev models.Vote
	err := r.db.WithContext(ctx).
		Where("election_id = ? AND id < ?", electionID, voteID).
		Order("id DESC").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if prev.CurrentHash == nil {
		return "", nil
	}
	return *prev.CurrentHash, nil
}

// SealVote fixes the hash triple through the sanctioned internal write
// path. The current_hash guard makes the statement a no-op on an
// already sealed vote even under concurrent redelivery.
func (r *VoteRepository) SealVote(ctx context.Context, voteID uint, payloadHash, previousHash, currentHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("id = ? AND current_hash IS NULL", voteID).
		InstanceSet(models.InternalWriteKey, true).
		Updates(map[string]interface{}{
			"payload_hash":  payloadHash,
			"previous_hash": previousHash,
			"current_hash":  currentHash,
		}).Error
}

// UnsealedVoteIDs lists votes whose sealing job may have been lost,
// i.e. still unsealed after the grace period. Fed back into the queue
// by the repair sweep.
func (r *VoteRepository) UnsealedVoteIDs(ctx context.Context, olderThan time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("current_hash IS NULL AND created_at < ?", olderThan).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CountByElection returns the number of ballots in an election.
func (r *VoteRepository) CountByElection(ctx context.Context, electionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("election_id = ?", electionID).
		Count(&count).Error
	return count, err
}
