package models

import (
	"gorm.io/gorm"
)

// ElectionResult is the aggregate counter for one candidate in one
// position. Rows are created lazily by the tally engine at zero and
// incremented from there.
type ElectionResult struct {
	gorm.Model
	ElectionID  uint `gorm:"column:election_id;not null;uniqueIndex:idx_results_election_position_candidate" json:"election_id"`
	PositionID  uint `gorm:"column:position_id;not null;uniqueIndex:idx_results_election_position_candidate" json:"position_id"`
	CandidateID uint `gorm:"column:candidate_id;not null;uniqueIndex:idx_results_election_position_candidate" json:"candidate_id"`
	VoteCount   uint `gorm:"column:vote_count;not null;default:0" json:"vote_count"`
}

// TableName specifies the table name for ElectionResult
func (ElectionResult) TableName() string {
	return "election_results"
}

// frozen reports whether the owning election has been finalized. The
// lookup runs on the caller's connection, so inside a transaction it
// sees the transaction's view.
func (r *ElectionResult) frozen(tx *gorm.DB) (bool, error) {
	var status ElectionStatus
	err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&Election{}).
		Select("status").
		Where("id = ?", r.ElectionID).
		Scan(&status).Error
	if err != nil {
		return false, err
	}
	return status == StatusFinalized, nil
}

// BeforeCreate rejects new counters under a finalized election.
func (r *ElectionResult) BeforeCreate(tx *gorm.DB) error {
	frozen, err := r.frozen(tx)
	if err != nil {
		return err
	}
	if frozen {
		return ErrResultFrozen
	}
	return nil
}

// BeforeUpdate rejects counter changes under a finalized election.
func (r *ElectionResult) BeforeUpdate(tx *gorm.DB) error {
	frozen, err := r.frozen(tx)
	if err != nil {
		return err
	}
	if frozen {
		return ErrResultFrozen
	}
	return nil
}

// BeforeDelete rejects counter removal under a finalized election.
func (r *ElectionResult) BeforeDelete(tx *gorm.DB) error {
	frozen, err := r.frozen(tx)
	if err != nil {
		return err
	}
	if frozen {
		return ErrResultFrozen
	}
	return nil
}

// AutoMigrate creates the ledger schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Election{},
		&ElectionSetting{},
		&Vote{},
		&VoteDetail{},
		&ElectionResult{},
	)
}
