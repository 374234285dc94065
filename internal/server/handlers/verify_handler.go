package handlers

import (
	"net/http"

	"election-service/internal/server/repository"
	"election-service/internal/server/service"

	"github.com/gin-gonic/gin"
)

type VerifyHandler struct {
	verifyService *service.VerifyService
	electionRepo  *repository.ElectionRepository
}

func NewVerifyHandler(verifyService *service.VerifyService, electionRepo *repository.ElectionRepository) *VerifyHandler {
	return &VerifyHandler{verifyService: verifyService, electionRepo: electionRepo}
}

// @Summary Verify an election's chain
// @Description Replay the election's full ballot chain and report the first broken link, if any
// @Tags verification
// @Produce json
// @Param election_id path int true "Election ID"
// @Success 200 {object} models.ElectionVerification
// @Failure 404 {object} map[string]string
// @Router /elections/{election_id}/verify [get]
func (h *VerifyHandler) VerifyElection(c *gin.Context) {
	electionID, ok := parseIDParam(c, "election_id")
	if !ok {
		return
	}

	election, err := h.electionRepo.GetWithSetting(c.Request.Context(), electionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if election == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "election not found"})
		return
	}

	result, err := h.verifyService.VerifyElection(c.Request.Context(), electionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Verify a single ballot
// @Description Recompute one ballot's hashes against the stored chain values
// @Tags verification
// @Produce json
// @Param election_id path int true "Election ID"
// @Param vote_id path int true "Vote ID"
// @Success 200 {object} models.VoteVerification
// @Failure 404 {object} map[string]string
// @Router /elections/{election_id}/votes/{vote_id}/verify [get]
func (h *VerifyHandler) VerifyVote(c *gin.Context) {
	electionID, ok := parseIDParam(c, "election_id")
	if !ok {
		return
	}
	voteID, ok := parseIDParam(c, "vote_id")
	if !ok {
		return
	}

	result, err := h.verifyService.VerifyVote(c.Request.Context(), electionID, voteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vote not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}
