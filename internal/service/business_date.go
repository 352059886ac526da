package service

import (
	"time"

	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
)

// BusinessDate returns the date a snapshot taken at now belongs to. Before
// cutoffHour (local to loc) stock still counts toward the previous day's close.
func BusinessDate(now time.Time, loc *time.Location, cutoffHour int) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	if local.Hour() < cutoffHour {
		d--
	}
	return model.NewDate(y, m, d)
}
