package event_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-etl/internal/event"
	"github.com/tuanvumaihuynh/inventory-etl/internal/storage/mq"
	"github.com/tuanvumaihuynh/inventory-etl/pkg/runid"
)

type recordingProducer struct {
	msgs []mq.ProduceMsg
	err  error
}

func (p *recordingProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestServicePublishSnapshotMerged(t *testing.T) {
	ev := event.SnapshotMergedEvent{
		RunID:        "run-1",
		BusinessDate: "2026-10-19",
		StagedRows:   2,
		HistoryRows:  5,
		HistoryTable: "inventory_levels_history",
		MergedAt:     time.Date(2026, 10, 19, 18, 5, 0, 0, time.UTC),
	}

	t.Run("Should produce keyed JSON payload with run id header", func(t *testing.T) {
		p := &recordingProducer{}
		svc := event.New("inventory.snapshot.merged", p)

		ctx := runid.NewContext(context.Background(), "run-1")
		require.NoError(t, svc.PublishSnapshotMerged(ctx, ev))
		require.Len(t, p.msgs, 1)

		msg := p.msgs[0]
		assert.Equal(t, "inventory.snapshot.merged", msg.Topic)
		assert.Equal(t, "2026-10-19", *msg.PartitionKey)
		assert.Equal(t, "run-1", msg.Headers[runid.Header])

		var got event.SnapshotMergedEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, ev, got)
	})

	t.Run("Should return producer error", func(t *testing.T) {
		p := &recordingProducer{err: errors.New("broker down")}
		err := event.New("t", p).PublishSnapshotMerged(context.Background(), ev)
		assert.ErrorContains(t, err, "broker down")
	})
}
