package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/ports/models"
	"election-service/internal/server/repository"
)

// ChainArchiver stores the audit manifest of a finalized election.
type ChainArchiver interface {
	ArchiveManifest(ctx context.Context, manifest *models.ChainManifest) error
}

// FinalizeService runs the terminal transition: the chain's last
// current hash becomes the election's tamper-evidence fingerprint.
type FinalizeService struct {
	electionRepo *repository.ElectionRepository
	voteRepo     *repository.VoteRepository
	archiver     ChainArchiver
	now          func() time.Time
}

func NewFinalizeService(electionRepo *repository.ElectionRepository, voteRepo *repository.VoteRepository, archiver ChainArchiver, now func() time.Time) *FinalizeService {
	if now == nil {
		now = time.Now
	}
	return &FinalizeService{electionRepo: electionRepo, voteRepo: voteRepo, archiver: archiver, now: now}
}

// Finalize computes the final hash and moves the election to its
// terminal state. Redelivery-safe: a missing election is a no-op, and
// the guarded update means only one of several racing workers lands
// the transition.
func (s *FinalizeService) Finalize(ctx context.Context, electionID uint) error {
	election, err := s.electionRepo.GetWithSetting(ctx, electionID)
	if err != nil {
		return fmt.Errorf("finalize election %d: %w", electionID, err)
	}
	if election == nil {
		slog.Warn("finalize: election missing, skipping", "election_id", electionID)
		return nil
	}
	if election.FinalizedAt != nil {
		return nil
	}

	last, err := s.voteRepo.LastVote(ctx, electionID)
	if err != nil {
		return fmt.Errorf("finalize election %d: last vote: %w", electionID, err)
	}
	var finalHash *string
	if last != nil && last.CurrentHash != nil {
		finalHash = last.CurrentHash
	}

	finalizedAt := s.now()
	landed, err := s.electionRepo.Finalize(ctx, electionID, finalHash, finalizedAt)
	if err != nil {
		return fmt.Errorf("finalize election %d: %w", electionID, err)
	}
	if !landed {
		return nil
	}

	slog.Info("election finalized", "election_id", electionID, "final_hash", finalHash)

	if s.archiver != nil {
		if err := s.archiveManifest(ctx, election, finalHash, finalizedAt); err != nil {
			// The ledger state is already durable; the manifest upload
			// is best-effort audit material.
			slog.Warn("finalize: manifest archive failed", "election_id", electionID, "error", err)
		}
	}
	return nil
}

func (s *FinalizeService) archiveManifest(ctx context.Context, election *models.Election, finalHash *string, finalizedAt time.Time) error {
	votes, err := s.voteRepo.ListByElection(ctx, election.ID)
	if err != nil {
		return err
	}
	manifest := &models.ChainManifest{
		ElectionID:  election.ID,
		Title:       election.Title,
		FinalizedAt: finalizedAt,
		FinalHash:   finalHash,
		TotalVotes:  len(votes),
		Votes:       make([]models.ManifestEntry, 0, len(votes)),
	}
	for i := range votes {
		entry := models.ManifestEntry{VoteID: votes[i].ID, PreviousHash: votes[i].StoredPreviousHash()}
		if votes[i].PayloadHash != nil {
			entry.PayloadHash = *votes[i].PayloadHash
		}
		if votes[i].CurrentHash != nil {
			entry.CurrentHash = *votes[i].CurrentHash
		}
		manifest.Votes = append(manifest.Votes, entry)
	}
	return s.archiver.ArchiveManifest(ctx, manifest)
}
