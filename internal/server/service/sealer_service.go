package service

import (
	"context"
	"fmt"
	"log/slog"

	"election-service/internal/jobs"
	"election-service/internal/ledger"
	"election-service/internal/server/repository"
)

// SealerService fixes the hash chain fields of freshly cast votes.
type SealerService struct {
	voteRepo *repository.VoteRepository
	producer jobs.Producer
	cache    VerificationCache
}

func NewSealerService(voteRepo *repository.VoteRepository, producer jobs.Producer, cache VerificationCache) *SealerService {
	return &SealerService{voteRepo: voteRepo, producer: producer, cache: cache}
}

// Seal computes and persists the payload hash, previous-hash link and
// current hash for one vote. Safe under redelivery: an already sealed
// vote short-circuits, and a vanished vote is a no-op.
//
// The tally job is published even on the short-circuit path so a
// worker that crashed between sealing and publishing still gets its
// vote counted on the next delivery.
func (s *SealerService) Seal(ctx context.Context, voteID uint) error {
	vote, err := s.voteRepo.GetWithDetails(ctx, voteID)
	if err != nil {
		return fmt.Errorf("seal vote %d: %w", voteID, err)
	}
	if vote == nil {
		slog.Warn("seal: vote missing, skipping", "vote_id", voteID)
		return nil
	}
	if vote.Sealed() {
		return s.enqueueTally(ctx, vote.ID)
	}

	previousHash, err := s.voteRepo.PreviousCurrentHash(ctx, vote.ElectionID, vote.ID)
	if err != nil {
		return fmt.Errorf("seal vote %d: previous hash: %w", voteID, err)
	}

	payloadHash := ledger.PayloadHash(vote.Details)
	currentHash := ledger.ChainHash(payloadHash, previousHash)

	if err := s.voteRepo.SealVote(ctx, vote.ID, payloadHash, previousHash, currentHash); err != nil {
		return fmt.Errorf("seal vote %d: persist: %w", voteID, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, vote.ElectionID)
	}

	slog.Info("vote sealed", "vote_id", vote.ID, "election_id", vote.ElectionID)
	return s.enqueueTally(ctx, vote.ID)
}

func (s *SealerService) enqueueTally(ctx context.Context, voteID uint) error {
	if s.producer == nil {
		return nil
	}
	if err := s.producer.PublishTallyVote(ctx, voteID); err != nil {
		// The seal itself is durable; returning the error leaves the
		// seal job uncommitted so the queue redelivers and retries the
		// publish.
		return fmt.Errorf("seal vote %d: enqueue tally: %w", voteID, err)
	}
	return nil
}
