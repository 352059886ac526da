package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
	"github.com/tuanvumaihuynh/inventory-etl/internal/storage/db"
)

// ExcludeDate drops rows of one snapshot date from a union source.
type ExcludeDate struct {
	// Date is the excluded snapshot date when WarehouseToday is false.
	Date time.Time
	// WarehouseToday excludes the warehouse's own current UTC date instead of Date.
	WarehouseToday bool
}

// UnionSource is one SELECT arm of a table rebuild.
type UnionSource struct {
	Table   string
	Exclude *ExcludeDate
}

// Warehouse is the tabular store the inventory history lives in.
type Warehouse interface {
	// ReplaceRows replaces the whole content of table with rows in one commit.
	ReplaceRows(ctx context.Context, table string, rows []model.InventorySnapshotRow) (int64, error)
	// ReplaceWithUnion evaluates the UNION ALL of sources and commits the result
	// as the new content of dest in one commit. Sources may read dest itself.
	ReplaceWithUnion(ctx context.Context, dest string, sources []UnionSource) (int64, error)
	// ListRows returns the content of table ordered by date, product and location.
	ListRows(ctx context.Context, table string) ([]model.InventorySnapshotRow, error)
}

var _ Warehouse = (*postgresWarehouse)(nil)

const rebuildTempTable = "snapshot_rebuild"

type postgresWarehouse struct {
	db db.DB
}

// NewWarehouse returns a Warehouse backed by PostgreSQL.
func NewWarehouse(db db.DB) Warehouse {
	return &postgresWarehouse{db: db}
}

func (w postgresWarehouse) ReplaceRows(ctx context.Context, table string, rows []model.InventorySnapshotRow) (int64, error) {
	ident := tableIdentifier(table)

	var copied int64
	err := w.db.WithTx(ctx, func(tx db.DB) error {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}

		n, err := tx.CopyFrom(ctx, ident, model.SnapshotColumns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return rows[i].Values(), nil
		}))
		if err != nil {
			return fmt.Errorf("copy into %s: %w", table, err)
		}
		copied = n

		return nil
	})
	if err != nil {
		return 0, err
	}

	return copied, nil
}

func (w postgresWarehouse) ReplaceWithUnion(ctx context.Context, dest string, sources []UnionSource) (int64, error) {
	if len(sources) == 0 {
		return 0, fmt.Errorf("rebuild %s: no sources", dest)
	}

	query, args := unionQuery(sources)
	destIdent := tableIdentifier(dest).Sanitize()
	tmpIdent := pgx.Identifier{rebuildTempTable}.Sanitize()
	columns := strings.Join(model.SnapshotColumns, ", ")

	var inserted int64
	err := w.db.WithTx(ctx, func(tx db.DB) error {
		// Materialize first: the query may read dest, which is truncated below.
		if _, err := tx.Exec(ctx, "CREATE TEMPORARY TABLE "+tmpIdent+" (LIKE "+destIdent+") ON COMMIT DROP"); err != nil {
			return fmt.Errorf("create rebuild table: %w", err)
		}

		if _, err := tx.Exec(ctx, "INSERT INTO "+tmpIdent+" ("+columns+") "+query, args...); err != nil {
			return fmt.Errorf("run rebuild query: %w", err)
		}

		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+destIdent); err != nil {
			return fmt.Errorf("truncate %s: %w", dest, err)
		}

		tag, err := tx.Exec(ctx, "INSERT INTO "+destIdent+" ("+columns+") SELECT "+columns+" FROM "+tmpIdent)
		if err != nil {
			return fmt.Errorf("insert into %s: %w", dest, err)
		}
		inserted = tag.RowsAffected()

		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

func (w postgresWarehouse) ListRows(ctx context.Context, table string) ([]model.InventorySnapshotRow, error) {
	rows, err := w.db.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY snapshot_date, product_id, location_id",
		strings.Join(model.SnapshotColumns, ", "),
		tableIdentifier(table).Sanitize(),
	))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	result, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.InventorySnapshotRow])
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", table, err)
	}

	return result, nil
}

// unionQuery renders sources as a single UNION ALL statement with positional args.
func unionQuery(sources []UnionSource) (string, []any) {
	columns := strings.Join(model.SnapshotColumns, ", ")

	var (
		args []any
		arms = make([]string, 0, len(sources))
	)
	for _, src := range sources {
		arm := fmt.Sprintf("SELECT %s FROM %s", columns, tableIdentifier(src.Table).Sanitize())

		switch {
		case src.Exclude == nil:
		case src.Exclude.WarehouseToday:
			arm += " WHERE snapshot_date <> (CURRENT_TIMESTAMP AT TIME ZONE 'UTC')::date"
		default:
			args = append(args, src.Exclude.Date)
			arm += fmt.Sprintf(" WHERE snapshot_date <> $%d::date", len(args))
		}

		arms = append(arms, arm)
	}

	return strings.Join(arms, " UNION ALL "), args
}

// tableIdentifier splits an optionally schema-qualified table name.
func tableIdentifier(name string) pgx.Identifier {
	return pgx.Identifier(strings.Split(name, "."))
}
