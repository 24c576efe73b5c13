package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"ielts-payme-billing/internal/config"
	"ielts-payme-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentEventPublisher = (*KafkaPublisher)(nil)

// NewSyncProducer dials the brokers with acks from all in-sync replicas.
func NewSyncProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Producer.Retry.Max = 5
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Version = sarama.V3_3_0_0

	p, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

// KafkaPublisher writes payment events to a single topic, keyed by order id so
// all events of one order land on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zerolog.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, logger *zerolog.Logger) *KafkaPublisher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "KafkaPublisher").Logger()
	return &KafkaPublisher{producer: producer, topic: topic, log: &l}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev adapter.PaymentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal payment event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.OrderID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(ev.Type)},
			{Key: []byte("event_id"), Value: []byte(ev.ID)},
		},
		Timestamp: time.Now(),
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("publish payment event: %w", err)
	}
	p.log.Debug().
		Str("event", string(ev.Type)).
		Str("order_id", ev.OrderID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("payment event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
