package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockledger/internal/domain"
	"stockledger/internal/metrics"
)

// DefaultRecentLimit is used when RecentMovements gets a non-positive limit.
const DefaultRecentLimit = 10

// StatsRepo holds the read-only roll-ups over products and the ledger.
type StatsRepo struct {
	db      *sqlx.DB
	metrics *metrics.Metrics
}

// NewStatsRepo returns the aggregator over db. m may be nil.
func NewStatsRepo(db *sqlx.DB, m *metrics.Metrics) *StatsRepo {
	return &StatsRepo{db: db, metrics: m}
}

type stockRow struct {
	Stock   int             `db:"current_stock"`
	Minimum int             `db:"minimum_stock"`
	Price   decimal.Decimal `db:"unit_price"`
}

// stockRows reads every product's stock figures in a single statement.
func (r *StatsRepo) stockRows(op string) ([]stockRow, error) {
	var rows []stockRow
	if err := r.db.Select(&rows, `SELECT current_stock, minimum_stock, unit_price FROM products`); err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func valuation(rows []stockRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Price.Mul(decimal.NewFromInt(int64(row.Stock))))
	}
	return total
}

// InventoryValue is the sum of current_stock * unit_price over all products;
// zero when there are none. Prices are decimal text, so the sum is taken
// here rather than in SQL floating point.
func (r *StatsRepo) InventoryValue() (decimal.Decimal, error) {
	rows, err := r.stockRows("inventory value")
	if err != nil {
		return decimal.Zero, err
	}
	total := valuation(rows)
	r.metrics.SetInventoryValue(total.InexactFloat64())
	return total, nil
}

// Summary returns the product count, inventory value and number of products
// below their minimum stock. All three come from the same row set.
func (r *StatsRepo) Summary() (domain.Summary, error) {
	rows, err := r.stockRows("summary")
	if err != nil {
		return domain.Summary{}, err
	}
	s := domain.Summary{ProductCount: len(rows), InventoryValue: valuation(rows)}
	for _, row := range rows {
		if row.Stock < row.Minimum {
			s.AlertCount++
		}
	}
	r.metrics.SetInventoryValue(s.InventoryValue.InexactFloat64())
	r.metrics.SetLowStock(s.AlertCount)
	return s, nil
}

// RecentMovements returns the limit most recent ledger rows, newest first.
func (r *StatsRepo) RecentMovements(limit int) ([]domain.Movement, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := []domain.Movement{}
	if err := r.db.Select(&out, movementSelect+newestFirst+` LIMIT ?`, limit); err != nil {
		return nil, storeErr("recent movements", err)
	}
	return out, nil
}
