package handlers

import (
	"net/http"

	"election-service/internal/server/repository"
	"election-service/internal/server/service"

	"github.com/gin-gonic/gin"
)

type ElectionHandler struct {
	electionRepo     *repository.ElectionRepository
	resultRepo       *repository.ResultRepository
	lifecycleService *service.LifecycleService
}

func NewElectionHandler(electionRepo *repository.ElectionRepository, resultRepo *repository.ResultRepository, lifecycleService *service.LifecycleService) *ElectionHandler {
	return &ElectionHandler{
		electionRepo:     electionRepo,
		resultRepo:       resultRepo,
		lifecycleService: lifecycleService,
	}
}

// @Summary Get an election
// @Description Get one election with its schedule
// @Tags elections
// @Produce json
// @Param election_id path int true "Election ID"
// @Success 200 {object} models.Election
// @Failure 404 {object} map[string]string
// @Router /elections/{election_id} [get]
func (h *ElectionHandler) GetElection(c *gin.Context) {
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
	c.JSON(http.StatusOK, election)
}

// @Summary Get election results
// @Description Get the tallied per-candidate counters of an election
// @Tags elections
// @Produce json
// @Param election_id path int true "Election ID"
// @Success 200 {array} models.ElectionResult
// @Router /elections/{election_id}/results [get]
func (h *ElectionHandler) GetResults(c *gin.Context) {
	electionID, ok := parseIDParam(c, "election_id")
	if !ok {
		return
	}
	results, err := h.resultRepo.ListByElection(c.Request.Context(), electionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// @Summary Run the lifecycle sweep
// @Description Apply the scheduled status transitions immediately instead of waiting for the next tick
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]string
// @Router /admin/elections/sweep [post]
func (h *ElectionHandler) Sweep(c *gin.Context) {
	if err := h.lifecycleService.Sweep(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "sweep completed"})
}

// @Summary Dispatch finalizations
// @Description Enqueue a finalize job for every ended election that has not been finalized yet
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]int
// @Router /admin/elections/finalize [post]
func (h *ElectionHandler) DispatchFinalizations(c *gin.Context) {
	dispatched, err := h.lifecycleService.DispatchFinalizations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dispatched": dispatched})
}

// @Summary Mark an election compromised
// @Description Explicit operator transition into the quarantine state; never triggered automatically
// @Tags admin
// @Produce json
// @Param election_id path int true "Election ID"
// @Success 200 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /admin/elections/{election_id}/compromise [post]
func (h *ElectionHandler) Compromise(c *gin.Context) {
	electionID, ok := parseIDParam(c, "election_id")
	if !ok {
		return
	}
	moved, err := h.lifecycleService.MarkCompromised(c.Request.Context(), electionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !moved {
		c.JSON(http.StatusConflict, gin.H{"error": "election not found or already terminal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "election marked compromised"})
}
