package report_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	applog "stockledger/internal/log"
	"stockledger/internal/report"
	"stockledger/internal/repos"
)

func init() { applog.SetOutput(io.Discard, "error") }

func demoSource(t *testing.T) report.Source {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repos.SeedDemo(db))
	return report.Source{
		Prods:  repos.NewProductRepo(db),
		Ledger: repos.NewMovementRepo(db, nil),
		Stats:  repos.NewStatsRepo(db, nil),
	}
}

func TestBuild(t *testing.T) {
	f, err := report.Build(demoSource(t))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{report.SheetProducts, report.SheetLowStock, report.SheetMovements}, f.GetSheetList())

	rows, err := f.GetRows(report.SheetProducts)
	require.NoError(t, err)
	// header, four products, a blank line, the summary
	require.Len(t, rows, 7)
	assert.Equal(t, "name", rows[0][1])
	assert.Equal(t, "Dish soap 500ml", rows[1][1])
	assert.Equal(t, "LOW_STOCK", rows[1][8])
	last := rows[6]
	assert.Equal(t, []string{"products", "4", "alerts", "2", "inventory value"}, last[:5])

	low, err := f.GetRows(report.SheetLowStock)
	require.NoError(t, err)
	require.Len(t, low, 3)
	assert.Equal(t, "Sparkling water 1L", low[1][1])
	assert.Equal(t, "-6", low[1][5])

	moves, err := f.GetRows(report.SheetMovements)
	require.NoError(t, err)
	assert.Len(t, moves, 1+7)
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, report.Export(demoSource(t), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(report.SheetProducts, "A1")
	require.NoError(t, err)
	assert.Equal(t, "id", v)
}
