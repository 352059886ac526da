// Package repotest provides an in-memory Warehouse for tests.
package repotest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/inventory-etl/internal/model"
	"github.com/tuanvumaihuynh/inventory-etl/internal/repository"
)

var _ repository.Warehouse = (*Warehouse)(nil)

// Warehouse keeps tables in memory. A replace either fully applies or leaves
// the table untouched, like a committed transaction.
type Warehouse struct {
	mu     sync.Mutex
	tables map[string][]model.InventorySnapshotRow
	ops    []string
	fail   map[string]error

	// Now is the warehouse clock used for WarehouseToday exclusions.
	Now func() time.Time
}

func NewWarehouse() *Warehouse {
	return &Warehouse{
		tables: map[string][]model.InventorySnapshotRow{},
		fail:   map[string]error{},
		Now:    time.Now,
	}
}

// Seed sets the content of table without recording an operation.
func (w *Warehouse) Seed(table string, rows []model.InventorySnapshotRow) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tables[table] = slices.Clone(rows)
}

// FailOn makes the next operation op ("replace:<table>" or "rebuild:<table>") fail with err.
func (w *Warehouse) FailOn(op string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.fail[op] = err
}

// Ops returns the operations performed so far.
func (w *Warehouse) Ops() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.ops)
}

// Rows returns a copy of table.
func (w *Warehouse) Rows(table string) []model.InventorySnapshotRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.tables[table])
}

func (w *Warehouse) ReplaceRows(_ context.Context, table string, rows []model.InventorySnapshotRow) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := "replace:" + table
	w.ops = append(w.ops, op)
	if err := w.takeFailure(op); err != nil {
		return 0, err
	}

	w.tables[table] = slices.Clone(rows)
	return int64(len(rows)), nil
}

func (w *Warehouse) ReplaceWithUnion(_ context.Context, dest string, sources []repository.UnionSource) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	op := "rebuild:" + dest
	w.ops = append(w.ops, op)
	if err := w.takeFailure(op); err != nil {
		return 0, err
	}
	if len(sources) == 0 {
		return 0, fmt.Errorf("rebuild %s: no sources", dest)
	}

	var result []model.InventorySnapshotRow
	for _, src := range sources {
		rows, ok := w.tables[src.Table]
		if !ok {
			return 0, fmt.Errorf("rebuild %s: table %s does not exist", dest, src.Table)
		}

		for _, r := range rows {
			if src.Exclude != nil && model.SameDate(r.SnapshotDate, w.excludedDate(*src.Exclude)) {
				continue
			}
			result = append(result, r)
		}
	}

	w.tables[dest] = result
	return int64(len(result)), nil
}

func (w *Warehouse) ListRows(_ context.Context, table string) ([]model.InventorySnapshotRow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rows := slices.Clone(w.tables[table])
	slices.SortStableFunc(rows, func(a, b model.InventorySnapshotRow) int {
		ka, kb := a.Key(), b.Key()
		if c := strings.Compare(ka.SnapshotDate, kb.SnapshotDate); c != 0 {
			return c
		}
		if c := strings.Compare(ka.ProductID, kb.ProductID); c != 0 {
			return c
		}
		return strings.Compare(ka.LocationID, kb.LocationID)
	})
	return rows, nil
}

func (w *Warehouse) excludedDate(ex repository.ExcludeDate) time.Time {
	if ex.WarehouseToday {
		return w.Now().UTC()
	}
	return ex.Date
}

func (w *Warehouse) takeFailure(op string) error {
	err, ok := w.fail[op]
	if !ok {
		return nil
	}
	delete(w.fail, op)
	return err
}
