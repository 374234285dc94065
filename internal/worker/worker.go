// Package worker executes the ledger jobs delivered by the queue and
// hosts the periodic lifecycle scheduler.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"election-service/internal/jobs"
	"election-service/internal/ports/models"
	"election-service/internal/server/service"

	"github.com/IBM/sarama"
)

// Worker is the sarama consumer group handler for all ledger topics.
// Every job it runs is idempotent, so redelivery after a failure or a
// rebalance is safe.
type Worker struct {
	sealer    *service.SealerService
	tally     *service.TallyService
	finalizer *service.FinalizeService
}

func NewWorker(sealer *service.SealerService, tally *service.TallyService, finalizer *service.FinalizeService) *Worker {
	return &Worker{sealer: sealer, tally: tally, finalizer: finalizer}
}

func (w *Worker) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (w *Worker) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim processes one partition's messages in order. A failed
// job leaves its offset unmarked so the queue delivers it again.
func (w *Worker) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := w.handle(session.Context(), message); err != nil {
			slog.Error("job failed, leaving offset for redelivery",
				"topic", message.Topic, "partition", message.Partition, "offset", message.Offset, "error", err)
			return err
		}
		session.MarkMessage(message, "")
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	switch message.Topic {
	case jobs.TopicSealVote:
		var msg models.SealVoteMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			slog.Error("dropping malformed seal message", "offset", message.Offset, "error", err)
			return nil
		}
		return w.sealer.Seal(ctx, msg.VoteID)
	case jobs.TopicTallyVote:
		var msg models.TallyVoteMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			slog.Error("dropping malformed tally message", "offset", message.Offset, "error", err)
			return nil
		}
		return w.tally.Tally(ctx, msg.VoteID)
	case jobs.TopicFinalizeElection:
		var msg models.FinalizeElectionMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			slog.Error("dropping malformed finalize message", "offset", message.Offset, "error", err)
			return nil
		}
		return w.finalizer.Finalize(ctx, msg.ElectionID)
	default:
		return fmt.Errorf("unknown topic %q", message.Topic)
	}
}
