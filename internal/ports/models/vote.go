package models

import (
	"errors"

	"gorm.io/gorm"
)

// Sentinel errors surfaced by the ledger entities and the cast flow.
var (
	ErrVoteImmutable   = errors.New("votes are append-only and cannot be updated or deleted")
	ErrDetailImmutable = errors.New("vote details are append-only and cannot be updated or deleted")
	ErrResultFrozen    = errors.New("results of a finalized election cannot be changed")
	ErrElectionNotOpen = errors.New("election is not accepting votes")
	ErrAlreadyVoted    = errors.New("student has already voted in this election")
)

// InternalWriteKey marks the two sanctioned system writes on a vote,
// sealing and tallying. Update statements without it are rejected by
// the entity guards below.
const InternalWriteKey = "ledger:internal_write"

// Vote is one cast ballot. The auto-increment id doubles as the chain
// sequence number: it is assigned once at insert and never reused, so
// "the preceding vote" is always well defined. Hash fields stay NULL
// until the sealer fixes them.
type Vote struct {
	gorm.Model
	ElectionID   uint         `gorm:"column:election_id;not null;uniqueIndex:idx_votes_election_student" json:"election_id"`
	StudentID    uint         `gorm:"column:student_id;not null;uniqueIndex:idx_votes_election_student" json:"student_id"`
	PayloadHash  *string      `gorm:"column:payload_hash;size:64" json:"payload_hash"`
	PreviousHash *string      `gorm:"column:previous_hash;size:64" json:"previous_hash"`
	CurrentHash  *string      `gorm:"column:current_hash;size:64" json:"current_hash"`
	Tallied      bool         `gorm:"column:tallied;not null;default:false" json:"tallied"`
	Details      []VoteDetail `gorm:"foreignKey:VoteID" json:"details,omitempty"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}

// Sealed reports whether the chain fields have been fixed.
func (v *Vote) Sealed() bool {
	return v.CurrentHash != nil && *v.CurrentHash != ""
}

// StoredPreviousHash returns the persisted previous hash, empty for
// the first vote of a chain.
func (v *Vote) StoredPreviousHash() string {
	if v.PreviousHash == nil {
		return ""
	}
	return *v.PreviousHash
}

// BeforeUpdate rejects every update that does not carry the internal
// write flag. The sealer and the tally engine are the only callers
// that set it.
func (v *Vote) BeforeUpdate(tx *gorm.DB) error {
	if _, ok := tx.InstanceGet(InternalWriteKey); ok {
		return nil
	}
	return ErrVoteImmutable
}

// BeforeDelete always rejects. A cast ballot is never removed through
// normal means; only a cascading election delete at the store level
// can take it away.
func (v *Vote) BeforeDelete(tx *gorm.DB) error {
	return ErrVoteImmutable
}

// VoteDetail is the voter's choice for one position. Immutable once
// the parent vote exists; a vote with zero details is a legal full
// abstention.
type VoteDetail struct {
	gorm.Model
	VoteID      uint `gorm:"column:vote_id;not null;index" json:"vote_id"`
	PositionID  uint `gorm:"column:position_id;not null;index" json:"position_id"`
	CandidateID uint `gorm:"column:candidate_id;not null;index" json:"candidate_id"`
}

// TableName specifies the table name for VoteDetail
func (VoteDetail) TableName() string {
	return "vote_details"
}

// BeforeUpdate always rejects; details have no sanctioned write path.
func (d *VoteDetail) BeforeUpdate(tx *gorm.DB) error {
	return ErrDetailImmutable
}

// BeforeDelete always rejects.
func (d *VoteDetail) BeforeDelete(tx *gorm.DB) error {
	return ErrDetailImmutable
}

/** -------------------- DTOs -------------------- */

// VoteChoice is one ballot line in a cast request.
type VoteChoice struct {
	PositionID  uint `json:"position_id" binding:"required"`
	CandidateID uint `json:"candidate_id" binding:"required"`
}

// CastVoteRequest defines the input for casting a ballot. An empty
// choice list is accepted (abstention on all positions).
type CastVoteRequest struct {
	Choices []VoteChoice `json:"choices" binding:"dive"`
}

/** -------------------- Queue messages -------------------- */

// SealVoteMessage asks the worker to fix a vote's chain fields.
type SealVoteMessage struct {
	JobID  string `json:"job_id"`
	VoteID uint   `json:"vote_id"`
}

// TallyVoteMessage asks the worker to fold a sealed vote into the
// aggregate counters.
type TallyVoteMessage struct {
	JobID  string `json:"job_id"`
	VoteID uint   `json:"vote_id"`
}

// FinalizeElectionMessage asks the worker to run the terminal
// transition for one election.
type FinalizeElectionMessage struct {
	JobID      string `json:"job_id"`
	ElectionID uint   `json:"election_id"`
}
