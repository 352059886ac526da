package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

type Snapshot struct {
	HistoryTable     string         `env:"SNAPSHOT_HISTORY_TABLE" envDefault:"inventory_levels_history" validate:"required"`
	StagingTable     string         `env:"SNAPSHOT_STAGING_TABLE" envDefault:"inventory_levels_staging" validate:"required,nefield=HistoryTable"`
	BusinessTimezone string         `env:"SNAPSHOT_BUSINESS_TIMEZONE" envDefault:"Asia/Riyadh" validate:"required,tzname"`
	CutoffHour       int            `env:"SNAPSHOT_CUTOFF_HOUR" envDefault:"21" validate:"gte=0,lte=23"`
	ExclusionClock   ExclusionClock `env:"SNAPSHOT_EXCLUSION_CLOCK" envDefault:"business"`
}

// Location resolves BusinessTimezone.
func (s Snapshot) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.BusinessTimezone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", s.BusinessTimezone, err)
	}
	return loc, nil
}

// ExclusionClock selects which notion of "today" the history rebuild drops.
type ExclusionClock uint8

const (
	// ExclusionClockBusiness drops history rows dated with the batch's business date.
	ExclusionClockBusiness ExclusionClock = iota
	// ExclusionClockWarehouse drops history rows dated with the warehouse's current UTC date.
	ExclusionClockWarehouse
)

func (c ExclusionClock) String() string {
	return []string{"business", "warehouse"}[c]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (c *ExclusionClock) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "business":
		*c = ExclusionClockBusiness
	case "warehouse":
		*c = ExclusionClockWarehouse
	default:
		return fmt.Errorf("unknown exclusion clock: %s", text)
	}
	return nil
}

func (c ExclusionClock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
