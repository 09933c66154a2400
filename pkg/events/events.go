// Package events publishes domain events to Kafka. Publishing is best effort: request paths log a
// failure and carry on.
package events

import (
	"context"
	"encoding/json"
	"time"

	"nika.id/configs/configslog"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const DefaultTopic = "nika.events"

const (
	RSVPCreated        = "rsvp.created"
	MessageCreated     = "message.created"
	MessageApproved    = "message.approved"
	TransactionUpdated = "transaction.updated"
	UserDeleted        = "user.deleted"
	PlanUpgraded       = "plan.upgraded"
)

type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.ClientID = "nika-web"
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}, nil
}

func newKafkaPublisherWithProducer(p sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (k *KafkaPublisher) Publish(_ context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(e.Key),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
		},
	})
	if err != nil {
		return err
	}
	configslog.Log.Debug("event published",
		zap.String("type", e.Type), zap.String("key", e.Key),
		zap.Int32("partition", partition), zap.Int64("offset", offset))
	return nil
}

func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}

// New returns a Kafka publisher, or Nop when no brokers are configured or the connection fails.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return Nop{}
	}
	p, err := NewKafkaPublisher(brokers, DefaultTopic)
	if err != nil {
		configslog.Log.Warn("kafka unavailable, domain events disabled", zap.Strings("brokers", brokers), zap.Error(err))
		return Nop{}
	}
	configslog.SLog.Infof("Kafka publisher ready (topic %s)", DefaultTopic)
	return p
}

// PublishAsync is the fire-and-forget helper services use after commit.
func PublishAsync(p Publisher, e Event) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, e); err != nil {
			configslog.Log.Warn("event publish failed", zap.String("type", e.Type), zap.String("key", e.Key), zap.Error(err))
		}
	}()
}
