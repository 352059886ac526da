package mq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-etl/pkg/ptr"
)

func TestBuildProduceRecord(t *testing.T) {
	t.Run("Should map headers and partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{
			Topic:        "inventory.snapshot.merged",
			Headers:      map[string]string{"X-Run-ID": "run-1"},
			Payload:      []byte(`{"business_date":"2026-10-19"}`),
			PartitionKey: ptr.New("2026-10-19"),
		})

		assert.Equal(t, "inventory.snapshot.merged", rec.Topic)
		assert.Equal(t, []byte("2026-10-19"), rec.Key)
		assert.JSONEq(t, `{"business_date":"2026-10-19"}`, string(rec.Value))
		require.Len(t, rec.Headers, 1)
		assert.Equal(t, "X-Run-ID", rec.Headers[0].Key)
		assert.Equal(t, []byte("run-1"), rec.Headers[0].Value)
	})

	t.Run("Should leave key empty without partition key", func(t *testing.T) {
		rec := buildProduceRecord(ProduceMsg{Topic: "t"})
		assert.Nil(t, rec.Key)
		assert.Empty(t, rec.Headers)
	})
}
