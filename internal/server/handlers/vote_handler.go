package handlers

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"election-service/internal/jobs"
	"election-service/internal/ports/models"
	"election-service/internal/server/middleware"
	"election-service/internal/server/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type VoteHandler struct {
	voteService *service.VoteService
	brokers     []string
}

func NewVoteHandler(voteService *service.VoteService, brokers []string) *VoteHandler {
	return &VoteHandler{
		voteService: voteService,
		brokers:     brokers,
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// @Summary Cast a ballot
// @Description Record the authenticated student's ballot for an ongoing election and enqueue it for sealing
// @Tags votes
// @Accept json
// @Produce json
// @Param election_id path int true "Election ID"
// @Param request body models.CastVoteRequest true "Ballot choices"
// @Success 201 {object} models.Vote
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /elections/{election_id}/votes [post]
func (h *VoteHandler) CastVote(c *gin.Context) {
	user, err := middleware.GetUserFromContext(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	electionID, ok := parseIDParam(c, "election_id")
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.voteService.CastVote(c.Request.Context(), electionID, user.ID, req.Choices)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAlreadyVoted):
			c.JSON(http.StatusConflict, gin.H{"error": "already voted in this election"})
		case errors.Is(err, models.ErrElectionNotOpen):
			c.JSON(http.StatusConflict, gin.H{"error": "election is not accepting votes"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	if vote == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "election not found"})
		return
	}

	// Enqueue sealing. If the queue write fails the vote is already
	// durable and the repair sweep re-enqueues it, so the ballot is
	// still acknowledged.
	if err := h.enqueueSeal(c, vote.ID); err != nil {
		c.JSON(http.StatusCreated, gin.H{"message": "vote recorded, sealing deferred", "vote_id": vote.ID})
		return
	}

	c.JSON(http.StatusCreated, vote)
}

func (h *VoteHandler) enqueueSeal(c *gin.Context, voteID uint) error {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: h.brokers,
		Topic:   jobs.TopicSealVote,
	})
	defer writer.Close()

	message := models.SealVoteMessage{JobID: uuid.NewString(), VoteID: voteID}
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(voteID))
	return writer.WriteMessages(c.Request.Context(), kafka.Message{
		Key:   key,
		Value: value,
	})
}
