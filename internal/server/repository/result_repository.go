package repository

import (
	"context"
	"errors"

	"election-service/internal/ports/models"

	"gorm.io/gorm"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// ListByElection returns the counters of an election ordered by
// position then candidate.
func (r *ResultRepository) ListByElection(ctx context.Context, electionID uint) ([]models.ElectionResult, error) {
	var results []models.ElectionResult
	err := r.db.WithContext(ctx).
		Where("election_id = ?", electionID).
		Order("position_id ASC, candidate_id ASC").
		Find(&results).Error
	return results, err
}

// Get fetches one counter row, nil when absent.
func (r *ResultRepository) Get(ctx context.Context, electionID, positionID, candidateID uint) (*models.ElectionResult, error) {
	var result models.ElectionResult
	err := r.db.WithContext(ctx).
		Where("election_id = ? AND position_id = ? AND candidate_id = ?", electionID, positionID, candidateID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SetCount overwrites a counter. Used by pre-finalization corrections
// only; the entity guard rejects it once the election is finalized.
func (r *ResultRepository) SetCount(ctx context.Context, result *models.ElectionResult, count uint) error {
	return r.db.WithContext(ctx).Model(result).Update("vote_count", count).Error
}

// Delete removes a counter. Rejected by the entity guard once the
// election is finalized.
func (r *ResultRepository) Delete(ctx context.Context, result *models.ElectionResult) error {
	return r.db.WithContext(ctx).Delete(result).Error
}
