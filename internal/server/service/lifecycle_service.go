package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"election-service/internal/jobs"
	"election-service/internal/server/repository"
)

// sealRepairGrace is how long a vote may stay unsealed before the
// repair sweep re-enqueues it, covering a lost seal job.
const sealRepairGrace = time.Minute

// LifecycleService drives elections through their scheduled states and
// feeds the finalization queue. All of it is built from conditional
// bulk updates and idempotent jobs, so overlapping schedulers are
// safe.
type LifecycleService struct {
	electionRepo *repository.ElectionRepository
	voteRepo     *repository.VoteRepository
	producer     jobs.Producer
	now          func() time.Time
}

func NewLifecycleService(electionRepo *repository.ElectionRepository, voteRepo *repository.VoteRepository, producer jobs.Producer, now func() time.Time) *LifecycleService {
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{electionRepo: electionRepo, voteRepo: voteRepo, producer: producer, now: now}
}

// Sweep applies the scheduled transitions: upcoming elections inside
// their window open, and anything past its end time closes, including
// an upcoming election whose whole window was missed.
func (s *LifecycleService) Sweep(ctx context.Context) error {
	now := s.now()
	started, err := s.electionRepo.MarkOngoing(ctx, now)
	if err != nil {
		return fmt.Errorf("sweep: mark ongoing: %w", err)
	}
	ended, err := s.electionRepo.MarkEnded(ctx, now)
	if err != nil {
		return fmt.Errorf("sweep: mark ended: %w", err)
	}
	if started > 0 || ended > 0 {
		slog.Info("lifecycle sweep applied transitions", "started", started, "ended", ended)
	}
	return nil
}

// DispatchFinalizations emits one finalize job per ended, not yet
// finalized election. Once finalized_at is set a row never matches
// again, so re-running the dispatcher is a no-op.
func (s *LifecycleService) DispatchFinalizations(ctx context.Context) (int, error) {
	ids, err := s.electionRepo.PendingFinalization(ctx)
	if err != nil {
		return 0, fmt.Errorf("dispatch finalizations: %w", err)
	}
	dispatched := 0
	for _, id := range ids {
		if err := s.producer.PublishFinalizeElection(ctx, id); err != nil {
			return dispatched, fmt.Errorf("dispatch finalizations: election %d: %w", id, err)
		}
		dispatched++
	}
	if dispatched > 0 {
		slog.Info("finalize jobs dispatched", "count", dispatched)
	}
	return dispatched, nil
}

// DispatchSealRepairs re-enqueues votes that are still unsealed after
// the grace period, covering a seal job lost between the cast commit
// and the queue write. Duplicates are harmless, sealing is idempotent.
func (s *LifecycleService) DispatchSealRepairs(ctx context.Context) (int, error) {
	ids, err := s.voteRepo.UnsealedVoteIDs(ctx, s.now().Add(-sealRepairGrace))
	if err != nil {
		return 0, fmt.Errorf("dispatch seal repairs: %w", err)
	}
	dispatched := 0
	for _, id := range ids {
		if err := s.producer.PublishSealVote(ctx, id); err != nil {
			return dispatched, fmt.Errorf("dispatch seal repairs: vote %d: %w", id, err)
		}
		dispatched++
	}
	if dispatched > 0 {
		slog.Info("seal repair jobs dispatched", "count", dispatched)
	}
	return dispatched, nil
}

// MarkCompromised is the explicit operator transition into the
// quarantine state. Nothing in the service flips an election here
// automatically, a failed verification only reports.
func (s *LifecycleService) MarkCompromised(ctx context.Context, electionID uint) (bool, error) {
	moved, err := s.electionRepo.MarkCompromised(ctx, electionID)
	if err != nil {
		return false, fmt.Errorf("mark compromised: election %d: %w", electionID, err)
	}
	if moved {
		slog.Warn("election marked compromised", "election_id", electionID)
	}
	return moved, nil
}
