package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TallyService folds sealed ballots into the aggregate counters.
type TallyService struct {
	db *gorm.DB
}

func NewTallyService(db *gorm.DB) *TallyService {
	return &TallyService{db: db}
}

// Tally increments each chosen candidate's counter exactly once per
// vote. Everything runs in one transaction behind a row lock on the
// vote, so the tallied check-then-act stays correct when the queue
// delivers the same job to several workers.
func (s *TallyService) Tally(ctx context.Context, voteID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vote models.Vote
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&vote, voteID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("tally: vote missing, skipping", "vote_id", voteID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("tally vote %d: lock: %w", voteID, err)
		}
		if vote.Tallied {
			return nil
		}

		var details []models.VoteDetail
		if err := tx.Where("vote_id = ?", vote.ID).Order("position_id ASC").Find(&details).Error; err != nil {
			return fmt.Errorf("tally vote %d: details: %w", voteID, err)
		}

		for i := range details {
			if err := incrementResult(tx, vote.ElectionID, &details[i]); err != nil {
				return fmt.Errorf("tally vote %d: %w", voteID, err)
			}
		}

		err = tx.Model(&models.Vote{}).
			Where("id = ?", vote.ID).
			InstanceSet(models.InternalWriteKey, true).
			Update("tallied", true).Error
		if err != nil {
			return fmt.Errorf("tally vote %d: mark tallied: %w", voteID, err)
		}

		slog.Info("vote tallied", "vote_id", vote.ID, "election_id", vote.ElectionID, "choices", len(details))
		return nil
	})
}

// incrementResult applies get-or-create-at-zero-then-increment to one
// counter row under a row lock. A lost create race falls back to
// locking the winner's row.
func incrementResult(tx *gorm.DB, electionID uint, detail *models.VoteDetail) error {
	locked := func(dest *models.ElectionResult) error {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("election_id = ? AND position_id = ? AND candidate_id = ?",
				electionID, detail.PositionID, detail.CandidateID).
			First(dest).Error
	}

	var result models.ElectionResult
	err := locked(&result)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		result = models.ElectionResult{
			ElectionID:  electionID,
			PositionID:  detail.PositionID,
			CandidateID: detail.CandidateID,
		}
		err = tx.Create(&result).Error
		if err != nil && repository.IsDuplicateKey(err) {
			err = locked(&result)
		}
	}
	if err != nil {
		return fmt.Errorf("result (%d,%d,%d): %w", electionID, detail.PositionID, detail.CandidateID, err)
	}

	err = tx.Model(&result).Update("vote_count", gorm.Expr("vote_count + ?", 1)).Error
	if err != nil {
		return fmt.Errorf("result (%d,%d,%d): increment: %w", electionID, detail.PositionID, detail.CandidateID, err)
	}
	return nil
}
