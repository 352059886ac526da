package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/tuanvumaihuynh/inventory-etl/internal/config"
	"github.com/tuanvumaihuynh/inventory-etl/internal/event"
	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
	"github.com/tuanvumaihuynh/inventory-etl/internal/service"
	"github.com/tuanvumaihuynh/inventory-etl/pkg/runid"
)

var tracer = otel.Tracer("internal/etl")

// Result summarizes one run.
type Result struct {
	RunID        string
	SnapshotRows int
	Merge        service.MergeResult
}

// Service runs the inventory snapshot pipeline once: build, merge, notify.
type Service struct {
	cfg       config.Snapshot
	logger    *slog.Logger
	builder   service.SnapshotBuilder
	merger    service.MergeService
	publisher event.Publisher
}

func NewService(
	cfg config.Snapshot,
	logger *slog.Logger,
	builder service.SnapshotBuilder,
	merger service.MergeService,
	publisher event.Publisher,
) *Service {
	return &Service{
		cfg:       cfg,
		logger:    logger.With(slog.String("service", "etl")),
		builder:   builder,
		merger:    merger,
		publisher: publisher,
	}
}

// Run executes the pipeline. Every returned error is fatal for the run and has
// already been logged with its full chain.
func (s *Service) Run(ctx context.Context) (Result, error) {
	id, err := runid.New()
	if err != nil {
		return Result{}, fmt.Errorf("generate run id: %w", err)
	}
	ctx = runid.NewContext(ctx, id)

	ctx, span := tracer.Start(ctx, "Service.Run")
	defer span.End()

	res, err := s.run(ctx)
	res.RunID = id
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "etl run failed")
		s.logger.ErrorContext(ctx, "inventory snapshot etl failed", slog.Any("error", err))
		return res, err
	}

	s.logger.InfoContext(ctx, "inventory snapshot etl completed",
		slog.Int("snapshot_rows", res.SnapshotRows),
		slog.Int64("history_rows", res.Merge.HistoryRows),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context) (Result, error) {
	s.logger.InfoContext(ctx, "starting inventory snapshot etl",
		slog.String("history_table", s.cfg.HistoryTable),
		slog.String("staging_table", s.cfg.StagingTable),
	)

	rows, err := s.builder.Build(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("build snapshot: %w", err)
	}

	res := Result{SnapshotRows: len(rows)}
	if len(rows) == 0 {
		s.logger.InfoContext(ctx, "nothing to merge")
		res.Merge = service.MergeResult{Skipped: true}
		return res, nil
	}

	res.Merge, err = s.merger.Merge(ctx, service.MergeParams{
		Rows:         rows,
		HistoryTable: s.cfg.HistoryTable,
		StagingTable: s.cfg.StagingTable,
	})
	if err != nil {
		return res, fmt.Errorf("merge snapshot: %w", err)
	}

	id, _ := runid.FromContext(ctx)
	if err := s.publisher.PublishSnapshotMerged(ctx, event.SnapshotMergedEvent{
		RunID:        id,
		BusinessDate: model.FormatDate(res.Merge.BusinessDate),
		StagedRows:   res.Merge.StagedRows,
		HistoryRows:  res.Merge.HistoryRows,
		HistoryTable: s.cfg.HistoryTable,
		MergedAt:     time.Now().UTC(),
	}); err != nil {
		// History is committed; a lost notification does not fail the run.
		s.logger.WarnContext(ctx, "error publishing snapshot merged event", slog.Any("error", err))
	}

	return res, nil
}
