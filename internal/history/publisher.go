package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// DefaultTopic is the operational history stream consumed by reporting and
// monitoring.
const DefaultTopic = "boxtribute.history"

// streamPayload is the JSON structure published to Kafka. Field names are
// part of the consumer contract.
type streamPayload struct {
	ID          int64  `json:"ID"`
	Table       string `json:"Table"`
	RecordID    int64  `json:"RecordID"`
	Kind        string `json:"Kind"`
	ActorID     string `json:"ActorID"`
	RecordedAt  string `json:"RecordedAt"`
	Description string `json:"Description"`
}

// KafkaPublisher hands entries to a bounded channel; a background worker
// drains it and produces to Kafka. The ledger stream is best effort by
// contract, so a full buffer drops the entry with a warning instead of
// blocking the originating request.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
	buffer chan Entry
	logger *slog.Logger
}

type PublisherOption func(*KafkaPublisher)

func WithTopic(topic string) PublisherOption {
	return func(p *KafkaPublisher) {
		p.topic = topic
	}
}

func WithBufferSize(n int) PublisherOption {
	return func(p *KafkaPublisher) {
		p.buffer = make(chan Entry, n)
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
func NewKafkaPublisher(ctx context.Context, brokers []string, opts ...PublisherOption) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	p := &KafkaPublisher{
		client: client,
		topic:  DefaultTopic,
		buffer: make(chan Entry, 1024),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := ensureTopic(ctx, client, p.topic); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Publish enqueues the entry for asynchronous delivery.
func (p *KafkaPublisher) Publish(entry Entry) {
	select {
	case p.buffer <- entry:
	default:
		p.logger.Warn("history stream buffer full, dropping entry",
			"table", entry.Table,
			"record_id", entry.RecordID,
			"kind", string(entry.Kind),
		)
	}
}

// Run drains the buffer until ctx is cancelled, then flushes outstanding
// produces. Intended to run under the server's errgroup.
func (p *KafkaPublisher) Run(ctx context.Context) error {
	for {
		select {
		case entry := <-p.buffer:
			p.produce(ctx, entry)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := p.client.Flush(flushCtx); err != nil {
				p.logger.Warn("history stream flush failed", "error", err)
			}
			p.client.Close()
			return ctx.Err()
		}
	}
}

func (p *KafkaPublisher) produce(ctx context.Context, entry Entry) {
	payload, err := json.Marshal(streamPayload{
		ID:          entry.ID,
		Table:       entry.Table,
		RecordID:    entry.RecordID,
		Kind:        string(entry.Kind),
		ActorID:     entry.ActorID.String(),
		RecordedAt:  entry.RecordedAt.Format(time.RFC3339Nano),
		Description: entry.Render(),
	})
	if err != nil {
		p.logger.Error("history entry marshal failed", "error", err)
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(entry.Table),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("history stream produce failed",
				"error", err,
				"record_id", entry.RecordID,
			)
		}
	})
}
