package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
	"github.com/tuanvumaihuynh/inventory-etl/internal/odoo"
)

var tracer = otel.Tracer("internal/service")

type SnapshotBuilderParams struct {
	Location   *time.Location
	CutoffHour int
	// Now defaults to time.Now.
	Now func() time.Time
}

type SnapshotBuilder interface {
	Build(ctx context.Context) ([]model.InventorySnapshotRow, error)
}

type snapshotBuilder struct {
	logger *slog.Logger
	source odoo.InventorySource
	params SnapshotBuilderParams
}

func NewSnapshotBuilder(
	logger *slog.Logger,
	source odoo.InventorySource,
	params SnapshotBuilderParams,
) SnapshotBuilder {
	if params.Now == nil {
		params.Now = time.Now
	}
	if params.Location == nil {
		params.Location = time.UTC
	}

	return &snapshotBuilder{
		logger: logger.With(slog.String("service", "snapshot")),
		source: source,
		params: params,
	}
}

// Build authenticates, fetches internal stock quants with their product and
// location details and returns one row per quant, all stamped with the same
// business date. A failed dimension lookup leaves the enrichment columns empty.
func (b *snapshotBuilder) Build(ctx context.Context) ([]model.InventorySnapshotRow, error) {
	ctx, span := tracer.Start(ctx, "SnapshotBuilder.Build")
	defer span.End()

	b.logger.InfoContext(ctx, "authenticating")
	if err := b.source.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	b.logger.InfoContext(ctx, "fetching stock quants")
	quants, err := b.source.InternalStockQuants(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch stock quants: %w", err)
	}
	if len(quants) == 0 {
		b.logger.WarnContext(ctx, "no stock quants found")
		return nil, nil
	}
	b.logger.InfoContext(ctx, "stock quants fetched", slog.Int("count", len(quants)))

	productIDs, locationIDs := referencedIDs(quants)

	b.logger.InfoContext(ctx, "fetching product and location details",
		slog.Int("products", len(productIDs)),
		slog.Int("locations", len(locationIDs)),
	)

	productsByID := make(map[int64]odoo.Product, len(productIDs))
	products, err := b.source.Products(ctx, productIDs)
	if err != nil {
		b.logger.WarnContext(ctx, "product details unavailable, continuing without them", slog.Any("error", err))
	}
	for _, p := range products {
		productsByID[p.ID] = p
	}

	locationsByID := make(map[int64]odoo.Location, len(locationIDs))
	locations, err := b.source.Locations(ctx, locationIDs)
	if err != nil {
		b.logger.WarnContext(ctx, "location details unavailable, continuing without them", slog.Any("error", err))
	}
	for _, l := range locations {
		locationsByID[l.ID] = l
	}

	businessDate := BusinessDate(b.params.Now(), b.params.Location, b.params.CutoffHour)
	b.logger.InfoContext(ctx, "assigning snapshot to business date",
		slog.String("business_date", model.FormatDate(businessDate)))
	span.SetAttributes(
		attribute.String("snapshot.business_date", model.FormatDate(businessDate)),
		attribute.Int("snapshot.quants", len(quants)),
	)

	rows := make([]model.InventorySnapshotRow, 0, len(quants))
	for _, q := range quants {
		rows = append(rows, buildRow(businessDate, q, productsByID, locationsByID))
	}

	b.logger.InfoContext(ctx, "snapshot built", slog.Int("rows", len(rows)))
	return rows, nil
}

func buildRow(
	businessDate time.Time,
	q odoo.StockQuant,
	productsByID map[int64]odoo.Product,
	locationsByID map[int64]odoo.Location,
) model.InventorySnapshotRow {
	row := model.InventorySnapshotRow{
		SnapshotDate:      businessDate,
		ProductID:         q.Product.IDString(),
		LocationID:        q.Location.IDString(),
		OnHandQuantity:    q.Quantity,
		ReservedQuantity:  q.ReservedQuantity,
		AvailableQuantity: q.Quantity.Sub(q.ReservedQuantity),
	}

	if q.Product.Valid {
		if p, ok := productsByID[q.Product.ID]; ok {
			row.ProductName = p.DisplayName.Ptr()
			row.ProductBarcode = p.Barcode.Ptr()
		}
	}

	if q.Location.Valid {
		if l, ok := locationsByID[q.Location.ID]; ok {
			row.LocationName = l.CompleteName.Ptr()
		}
	}

	return row
}

// referencedIDs returns the distinct product and location ids in first-seen order.
// Quants without a reference contribute nothing.
func referencedIDs(quants []odoo.StockQuant) (productIDs, locationIDs []int64) {
	seenProducts := make(map[int64]struct{})
	seenLocations := make(map[int64]struct{})

	for _, q := range quants {
		if q.Product.Valid {
			if _, ok := seenProducts[q.Product.ID]; !ok {
				seenProducts[q.Product.ID] = struct{}{}
				productIDs = append(productIDs, q.Product.ID)
			}
		}
		if q.Location.Valid {
			if _, ok := seenLocations[q.Location.ID]; !ok {
				seenLocations[q.Location.ID] = struct{}{}
				locationIDs = append(locationIDs, q.Location.ID)
			}
		}
	}

	return productIDs, locationIDs
}
