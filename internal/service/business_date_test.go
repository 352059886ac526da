package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
	"github.com/tuanvumaihuynh/inventory-etl/internal/service"
)

func TestBusinessDate(t *testing.T) {
	riyadh, err := time.LoadLocation("Asia/Riyadh")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before cutoff belongs to yesterday",
			now:  time.Date(2026, 10, 19, 20, 59, 0, 0, riyadh),
			want: model.NewDate(2026, 10, 18),
		},
		{
			name: "at cutoff belongs to today",
			now:  time.Date(2026, 10, 19, 21, 0, 0, 0, riyadh),
			want: model.NewDate(2026, 10, 19),
		},
		{
			name: "early morning belongs to yesterday",
			now:  time.Date(2026, 10, 19, 0, 30, 0, 0, riyadh),
			want: model.NewDate(2026, 10, 18),
		},
		{
			name: "first hours of the year roll back to previous year",
			now:  time.Date(2027, 1, 1, 0, 10, 0, 0, riyadh),
			want: model.NewDate(2026, 12, 31),
		},
		{
			name: "instant is evaluated in the business timezone",
			now:  time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC),
			want: model.NewDate(2026, 10, 19),
		},
		{
			name: "late UTC evening is already next local day",
			now:  time.Date(2026, 10, 19, 22, 30, 0, 0, time.UTC),
			want: model.NewDate(2026, 10, 19),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := service.BusinessDate(tt.now, riyadh, 21)
			assert.Equal(t, tt.want, got)
		})
	}
}
