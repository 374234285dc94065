// Package jobs defines the durable queue topics and the producer used
// to dispatch ledger work. Delivery is at-least-once; every consumer
// is idempotent, so duplicates are safe.
package jobs

import (
	"context"
	"encoding/json"
	"strconv"

	"election-service/internal/ports/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// One durable topic per job type.
const (
	TopicSealVote         = "election.vote.seal"
	TopicTallyVote        = "election.vote.tally"
	TopicFinalizeElection = "election.finalize"
)

// Topics lists everything the worker consumes.
func Topics() []string {
	return []string{TopicSealVote, TopicTallyVote, TopicFinalizeElection}
}

// Producer dispatches ledger jobs onto the queue.
type Producer interface {
	PublishSealVote(ctx context.Context, voteID uint) error
	PublishTallyVote(ctx context.Context, voteID uint) error
	PublishFinalizeElection(ctx context.Context, electionID uint) error
}

// KafkaProducer publishes jobs through a sarama synchronous producer.
type KafkaProducer struct {
	producer sarama.SyncProducer
}

func NewKafkaProducer(producer sarama.SyncProducer) *KafkaProducer {
	return &KafkaProducer{producer: producer}
}

func (p *KafkaProducer) publish(topic string, key uint, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: topic,
		// Keyed by entity id so retries of the same vote land on the
		// same partition and stay ordered.
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(key), 10)),
		Value: sarama.ByteEncoder(value),
	}
	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *KafkaProducer) PublishSealVote(ctx context.Context, voteID uint) error {
	return p.publish(TopicSealVote, voteID, models.SealVoteMessage{JobID: uuid.NewString(), VoteID: voteID})
}

func (p *KafkaProducer) PublishTallyVote(ctx context.Context, voteID uint) error {
	return p.publish(TopicTallyVote, voteID, models.TallyVoteMessage{JobID: uuid.NewString(), VoteID: voteID})
}

func (p *KafkaProducer) PublishFinalizeElection(ctx context.Context, electionID uint) error {
	return p.publish(TopicFinalizeElection, electionID, models.FinalizeElectionMessage{JobID: uuid.NewString(), ElectionID: electionID})
}
