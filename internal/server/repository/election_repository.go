package repository

import (
	"context"
	"errors"
	"time"

	"election-service/internal/ports/models"

	"gorm.io/gorm"
)

type ElectionRepository struct {
	db *gorm.DB
}

func NewElectionRepository(db *gorm.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

// Create stores an election together with its schedule record.
func (r *ElectionRepository) Create(ctx context.Context, election *models.Election) error {
	return r.db.WithContext(ctx).Create(election).Error
}

// GetWithSetting fetches an election and its schedule, nil when absent.
func (r *ElectionRepository) GetWithSetting(ctx context.Context, electionID uint) (*models.Election, error) {
	var election models.Election
	err := r.db.WithContext(ctx).Preload("Setting").First(&election, electionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &election, nil
}

// scheduledIDs builds the subquery joining elections to their schedule.
func (r *ElectionRepository) scheduledIDs(cond string, args ...interface{}) *gorm.DB {
	return r.db.Model(&models.ElectionSetting{}).Select("election_id").Where(cond, args...)
}

// MarkOngoing opens every upcoming election whose window contains now.
// A conditional bulk update: a row matches once, and updating it flips
// the predicate, so overlapping sweeps are harmless.
func (r *ElectionRepository) MarkOngoing(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("status = ?", models.StatusUpcoming).
		Where("id IN (?)", r.scheduledIDs("start_time <= ? AND end_time > ?", now, now)).
		Update("status", models.StatusOngoing)
	return res.RowsAffected, res.Error
}

// MarkEnded closes every election past its end time. Covers both the
// ongoing case and an upcoming election whose whole window was missed
// by a scheduler outage.
func (r *ElectionRepository) MarkEnded(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("status IN ?", []models.ElectionStatus{models.StatusUpcoming, models.StatusOngoing}).
		Where("id IN (?)", r.scheduledIDs("end_time <= ?", now)).
		Update("status", models.StatusEnded)
	return res.RowsAffected, res.Error
}

// PendingFinalization lists elections awaiting their terminal
// transition. Finalized rows drop out via finalized_at, which makes
// the dispatcher idempotent by construction.
func (r *ElectionRepository) PendingFinalization(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("status = ? AND finalized_at IS NULL", models.StatusEnded).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// Finalize runs the terminal transition. The status and finalized_at
// guards make re-runs no-ops; the boolean reports whether this call
// was the one that finalized.
func (r *ElectionRepository) Finalize(ctx context.Context, electionID uint, finalHash *string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ? AND status = ? AND finalized_at IS NULL", electionID, models.StatusEnded).
		Updates(map[string]interface{}{
			"status":       models.StatusFinalized,
			"finalized_at": at,
			"final_hash":   finalHash,
		})
	return res.RowsAffected > 0, res.Error
}

// MarkCompromised is the explicit operator transition into the
// quarantine state. Terminal states are left untouched.
func (r *ElectionRepository) MarkCompromised(ctx context.Context, electionID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Election{}).
		Where("id = ? AND status NOT IN ?", electionID,
			[]models.ElectionStatus{models.StatusFinalized, models.StatusCompromised}).
		Update("status", models.StatusCompromised)
	return res.RowsAffected > 0, res.Error
}
