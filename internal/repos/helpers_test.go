package repos_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain"
	applog "stockledger/internal/log"
	"stockledger/internal/metrics"
	"stockledger/internal/repos"
)

func init() { applog.SetOutput(io.Discard, "error") }

type store struct {
	db     *sqlx.DB
	reg    *prometheus.Registry
	cats   *repos.CategoryRepo
	prods  *repos.ProductRepo
	ledger *repos.MovementRepo
	stats  *repos.StatsRepo
}

func memdb(t *testing.T) store {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	return store{
		db:     db,
		reg:    reg,
		cats:   repos.NewCategoryRepo(db),
		prods:  repos.NewProductRepo(db),
		ledger: repos.NewMovementRepo(db, m),
		stats:  repos.NewStatsRepo(db, m),
	}
}

// metricsText returns the store's metrics in textfile format.
func (s store) metricsText(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stockledger.prom")
	require.NoError(t, metrics.WriteTextfile(path, s.reg))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s store) product(t *testing.T, name string, stock, min int) int64 {
	t.Helper()
	id, err := s.prods.Create(domain.NewProduct{Name: name, UnitPrice: price("1.00"), InitialStock: stock, MinimumStock: min})
	require.NoError(t, err)
	return id
}

func (s store) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := s.prods.Get(id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (s store) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.Get(&n, query, args...))
	return n
}

// clock hands out increasing timestamps one minute apart.
func clock(start time.Time) func() time.Time {
	t := start.Add(-time.Minute)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}
