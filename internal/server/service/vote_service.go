package service

import (
	"context"
	"fmt"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"
)

// VoteService is the cast boundary: it persists a ballot so the queue
// can seal and tally it. Eligibility is decided upstream by the
// eligibility services; only the structural rules live here.
type VoteService struct {
	voteRepo     *repository.VoteRepository
	electionRepo *repository.ElectionRepository
}

func NewVoteService(voteRepo *repository.VoteRepository, electionRepo *repository.ElectionRepository) *VoteService {
	return &VoteService{voteRepo: voteRepo, electionRepo: electionRepo}
}

// CastVote records a student's ballot for an ongoing election. The
// vote's auto-assigned id becomes its chain sequence number.
func (s *VoteService) CastVote(ctx context.Context, electionID, studentID uint, choices []models.VoteChoice) (*models.Vote, error) {
	election, err := s.electionRepo.GetWithSetting(ctx, electionID)
	if err != nil {
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	if election == nil {
		return nil, nil
	}
	if election.Status != models.StatusOngoing {
		return nil, models.ErrElectionNotOpen
	}

	vote := &models.Vote{ElectionID: electionID, StudentID: studentID}
	for _, choice := range choices {
		vote.Details = append(vote.Details, models.VoteDetail{
			PositionID:  choice.PositionID,
			CandidateID: choice.CandidateID,
		})
	}

	if err := s.voteRepo.CastVote(ctx, vote); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, models.ErrAlreadyVoted
		}
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	return vote, nil
}
