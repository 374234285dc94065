// Package ledger holds the hash chain primitives shared by the sealer
// and the verifier. The byte layout of the canonical payload is part
// of the tamper-evidence scheme and must never change.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"election-service/internal/ports/models"
)

// choicePayload is the canonical wire form of one ballot line. Field
// order and the absence of whitespace feed the hash.
type choicePayload struct {
	PositionID  uint `json:"position_id"`
	CandidateID uint `json:"candidate_id"`
}

// CanonicalPayload serializes ballot choices as compact JSON sorted by
// position id ascending. An empty ballot serializes to "[]".
func CanonicalPayload(details []models.VoteDetail) []byte {
	choices := make([]choicePayload, 0, len(details))
	for _, d := range details {
		choices = append(choices, choicePayload{PositionID: d.PositionID, CandidateID: d.CandidateID})
	}
	sort.Slice(choices, func(i, j int) bool {
		return choices[i].PositionID < choices[j].PositionID
	})
	// Marshaling a slice of plain integer structs cannot fail.
	payload, _ := json.Marshal(choices)
	return payload
}

// PayloadHash returns hex(SHA-256(canonical payload)).
func PayloadHash(details []models.VoteDetail) string {
	sum := sha256.Sum256(CanonicalPayload(details))
	return hex.EncodeToString(sum[:])
}

// ChainHash links a payload hash to its predecessor:
// hex(SHA-256(payloadHash || previousHash)). previousHash is the empty
// string for the first vote of an election.
func ChainHash(payloadHash, previousHash string) string {
	sum := sha256.Sum256([]byte(payloadHash + previousHash))
	return hex.EncodeToString(sum[:])
}
