package models

import (
	"time"

	"gorm.io/gorm"
)

// ElectionStatus is the lifecycle state of an election.
type ElectionStatus string

const (
	StatusDraft       ElectionStatus = "draft"
	StatusUpcoming    ElectionStatus = "upcoming"
	StatusOngoing     ElectionStatus = "ongoing"
	StatusEnded       ElectionStatus = "ended"
	StatusFinalized   ElectionStatus = "finalized"
	StatusCompromised ElectionStatus = "compromised"
)

// Election is the root of one ballot chain. FinalHash is set exactly
// when the status becomes finalized and is never written elsewhere.
type Election struct {
	gorm.Model
	Title       string           `gorm:"column:title;size:255;not null" json:"title"`
	Status      ElectionStatus   `gorm:"column:status;size:32;not null;default:draft;index" json:"status"`
	FinalizedAt *time.Time       `gorm:"column:finalized_at" json:"finalized_at"`
	FinalHash   *string          `gorm:"column:final_hash;size:64" json:"final_hash"`
	Setting     *ElectionSetting `gorm:"foreignKey:ElectionID" json:"setting,omitempty"`
}

// TableName specifies the table name for Election
func (Election) TableName() string {
	return "elections"
}

// ElectionSetting owns the voting schedule, kept apart from the
// election record itself so setup edits never touch the ledger root.
type ElectionSetting struct {
	gorm.Model
	ElectionID uint      `gorm:"column:election_id;not null;uniqueIndex" json:"election_id"`
	StartTime  time.Time `gorm:"column:start_time;not null" json:"start_time"`
	EndTime    time.Time `gorm:"column:end_time;not null" json:"end_time"`
}

// TableName specifies the table name for ElectionSetting
func (ElectionSetting) TableName() string {
	return "election_settings"
}

/** -------------------- DTOs -------------------- */

// VoteVerification is the result of checking a single ballot against
// the chain. Failures are data, not errors.
type VoteVerification struct {
	Valid               bool   `json:"valid"`
	Reason              string `json:"reason,omitempty"`
	ExpectedPayloadHash string `json:"expected_payload_hash,omitempty"`
	ExpectedCurrentHash string `json:"expected_current_hash,omitempty"`
	PreviousHash        string `json:"previous_hash"`
}

// ElectionVerification is the result of replaying an entire chain.
type ElectionVerification struct {
	Valid      bool    `json:"valid"`
	VoteID     uint    `json:"vote_id,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	TotalVotes int     `json:"total_votes"`
	FinalHash  *string `json:"final_hash"`
}

// ChainManifest is the audit artifact archived when an election is
// finalized.
type ChainManifest struct {
	ElectionID  uint            `json:"election_id"`
	Title       string          `json:"title"`
	FinalizedAt time.Time       `json:"finalized_at"`
	FinalHash   *string         `json:"final_hash"`
	TotalVotes  int             `json:"total_votes"`
	Votes       []ManifestEntry `json:"votes"`
}

// ManifestEntry is one sealed ballot's hash triple in the manifest.
type ManifestEntry struct {
	VoteID       uint   `json:"vote_id"`
	PayloadHash  string `json:"payload_hash"`
	PreviousHash string `json:"previous_hash"`
	CurrentHash  string `json:"current_hash"`
}
