package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tuanvumaihuynh/inventory-etl/internal/apperr"
	"github.com/tuanvumaihuynh/inventory-etl/internal/config"
	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
	"github.com/tuanvumaihuynh/inventory-etl/internal/repository"
)

type MergeParams struct {
	Rows         []model.InventorySnapshotRow
	HistoryTable string
	StagingTable string
}

type MergeResult struct {
	BusinessDate time.Time
	StagedRows   int64
	HistoryRows  int64
	// Skipped is set when there was nothing to merge.
	Skipped bool
}

type MergeService interface {
	Merge(ctx context.Context, params MergeParams) (MergeResult, error)
}

type mergeService struct {
	logger    *slog.Logger
	warehouse repository.Warehouse
	clock     config.ExclusionClock
}

func NewMergeService(
	logger *slog.Logger,
	warehouse repository.Warehouse,
	clock config.ExclusionClock,
) MergeService {
	return &mergeService{
		logger:    logger.With(slog.String("service", "merge")),
		warehouse: warehouse,
		clock:     clock,
	}
}

// Merge stages the batch, then rebuilds the history table as its rows outside
// the excluded date plus the staged batch, replacing it in one commit. Running
// it twice with the same batch leaves the same history. An empty batch is a no-op.
func (s *mergeService) Merge(ctx context.Context, params MergeParams) (MergeResult, error) {
	ctx, span := tracer.Start(ctx, "MergeService.Merge")
	defer span.End()

	if len(params.Rows) == 0 {
		s.logger.WarnContext(ctx, "snapshot is empty, skipping warehouse merge")
		return MergeResult{Skipped: true}, nil
	}

	businessDate, err := batchDate(params.Rows)
	if err != nil {
		return MergeResult{}, err
	}
	span.SetAttributes(
		attribute.String("snapshot.business_date", model.FormatDate(businessDate)),
		attribute.Int("snapshot.rows", len(params.Rows)),
	)

	s.logger.InfoContext(ctx, "uploading snapshot to staging table",
		slog.Int("rows", len(params.Rows)),
		slog.String("table", params.StagingTable),
	)
	staged, err := s.warehouse.ReplaceRows(ctx, params.StagingTable, params.Rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "staging failed")
		return MergeResult{}, apperr.WarehouseWriteErr.WrapParent(fmt.Errorf("replace staging table %s: %w", params.StagingTable, err))
	}
	s.logger.InfoContext(ctx, "snapshot staged", slog.Int64("rows", staged))

	exclude := &repository.ExcludeDate{Date: businessDate}
	if s.clock == config.ExclusionClockWarehouse {
		exclude = &repository.ExcludeDate{WarehouseToday: true}
	}

	s.logger.InfoContext(ctx, "rebuilding history table",
		slog.String("table", params.HistoryTable),
		slog.String("exclusion_clock", s.clock.String()),
	)
	total, err := s.warehouse.ReplaceWithUnion(ctx, params.HistoryTable, []repository.UnionSource{
		{Table: params.HistoryTable, Exclude: exclude},
		{Table: params.StagingTable},
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rebuild failed")
		return MergeResult{}, apperr.WarehouseWriteErr.WrapParent(fmt.Errorf("rebuild history table %s: %w", params.HistoryTable, err))
	}
	s.logger.InfoContext(ctx, "history table rebuilt", slog.Int64("rows", total))

	return MergeResult{
		BusinessDate: businessDate,
		StagedRows:   staged,
		HistoryRows:  total,
	}, nil
}

// batchDate returns the snapshot date shared by every row of a batch.
func batchDate(rows []model.InventorySnapshotRow) (time.Time, error) {
	d := rows[0].SnapshotDate
	for i, r := range rows[1:] {
		if !model.SameDate(r.SnapshotDate, d) {
			return time.Time{}, fmt.Errorf("row %d dated %s, batch dated %s",
				i+1, model.FormatDate(r.SnapshotDate), model.FormatDate(d))
		}
	}
	return d, nil
}
