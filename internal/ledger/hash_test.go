package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"election-service/internal/ports/models"

	"github.com/stretchr/testify/assert"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestCanonicalPayloadEmptyBallot(t *testing.T) {
	assert.Equal(t, "[]", string(CanonicalPayload(nil)))
	assert.Equal(t, "[]", string(CanonicalPayload([]models.VoteDetail{})))
}

func TestCanonicalPayloadSortsByPosition(t *testing.T) {
	details := []models.VoteDetail{
		{PositionID: 3, CandidateID: 9},
		{PositionID: 1, CandidateID: 4},
		{PositionID: 2, CandidateID: 7},
	}
	expected := `[{"position_id":1,"candidate_id":4},{"position_id":2,"candidate_id":7},{"position_id":3,"candidate_id":9}]`
	assert.Equal(t, expected, string(CanonicalPayload(details)))
}

func TestCanonicalPayloadIsOrderInsensitive(t *testing.T) {
	a := []models.VoteDetail{{PositionID: 1, CandidateID: 2}, {PositionID: 5, CandidateID: 6}}
	b := []models.VoteDetail{{PositionID: 5, CandidateID: 6}, {PositionID: 1, CandidateID: 2}}
	assert.Equal(t, CanonicalPayload(a), CanonicalPayload(b))
	assert.Equal(t, PayloadHash(a), PayloadHash(b))
}

func TestPayloadHashMatchesSHA256OfCanonicalBytes(t *testing.T) {
	details := []models.VoteDetail{{PositionID: 1, CandidateID: 2}}
	assert.Equal(t, sha256Hex(`[{"position_id":1,"candidate_id":2}]`), PayloadHash(details))
}

func TestChainHashLinksPayloadToPredecessor(t *testing.T) {
	p1 := PayloadHash([]models.VoteDetail{{PositionID: 1, CandidateID: 2}})
	p2 := PayloadHash([]models.VoteDetail{{PositionID: 1, CandidateID: 3}})

	// First vote: no predecessor, hash of the payload hash alone.
	v1 := ChainHash(p1, "")
	assert.Equal(t, sha256Hex(p1), v1)

	// Second vote chains onto the first one's current hash.
	v2 := ChainHash(p2, v1)
	assert.Equal(t, sha256Hex(p2+v1), v2)
	assert.NotEqual(t, v1, v2)
}
