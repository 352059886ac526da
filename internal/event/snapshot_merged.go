package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/inventory-etl/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory-etl/pkg/headers"
)

// SnapshotMergedEvent announces that the history table holds a new snapshot.
type SnapshotMergedEvent struct {
	RunID        string    `json:"run_id"`
	BusinessDate string    `json:"business_date"`
	StagedRows   int64     `json:"staged_rows"`
	HistoryRows  int64     `json:"history_rows"`
	HistoryTable string    `json:"history_table"`
	MergedAt     time.Time `json:"merged_at"`
}

type Publisher interface {
	PublishSnapshotMerged(ctx context.Context, ev SnapshotMergedEvent) error
}

var (
	_ Publisher = (*Service)(nil)
	_ Publisher = NoopPublisher{}
)

// Service publishes events to a message queue.
type Service struct {
	topic    string
	producer mq.Producer
}

// New creates a new event service.
func New(topic string, producer mq.Producer) *Service {
	return &Service{
		topic:    topic,
		producer: producer,
	}
}

// PublishSnapshotMerged produces ev keyed by its business date so that
// notifications for one day stay ordered.
func (s *Service) PublishSnapshotMerged(ctx context.Context, ev SnapshotMergedEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal snapshot merged event: %w", err)
	}

	key := ev.BusinessDate
	if err := s.producer.Produce(ctx, mq.ProduceMsg{
		Topic:        s.topic,
		Headers:      headers.Build(ctx),
		Payload:      payload,
		PartitionKey: &key,
	}); err != nil {
		return fmt.Errorf("produce snapshot merged event: %w", err)
	}

	return nil
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct {
	Logger *slog.Logger
}

func (p NoopPublisher) PublishSnapshotMerged(ctx context.Context, ev SnapshotMergedEvent) error {
	if p.Logger != nil {
		p.Logger.DebugContext(ctx, "kafka not configured, snapshot merged event dropped",
			slog.String("business_date", ev.BusinessDate))
	}
	return nil
}
