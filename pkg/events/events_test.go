package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestKafkaPublisherSendsEnvelope(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var e Event
		if err := json.Unmarshal(val, &e); err != nil {
			return err
		}
		if e.Type != RSVPCreated || e.Key != "andi-bunga" || e.OccurredAt.IsZero() {
			t.Errorf("unexpected envelope %+v", e)
		}
		return nil
	})
	p := newKafkaPublisherWithProducer(producer, DefaultTopic)
	if err := p.Publish(context.Background(), Event{Type: RSVPCreated, Key: "andi-bunga", Payload: map[string]int{"guests": 2}}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestKafkaPublisherReturnsSendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	p := newKafkaPublisherWithProducer(producer, DefaultTopic)
	if err := p.Publish(context.Background(), Event{Type: UserDeleted, Key: "1"}); err == nil {
		t.Fatal("expected error")
	}
	_ = p.Close()
}

func TestNewWithoutBrokersIsNop(t *testing.T) {
	if _, ok := New(nil).(Nop); !ok {
		t.Fatal("expected Nop publisher")
	}
}
