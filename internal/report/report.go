// Package report writes the inventory to an xlsx workbook: one sheet for
// products, one for low-stock alerts and one for the ledger.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"stockledger/internal/domain"
	"stockledger/internal/repos"
	"stockledger/internal/services"
)

const (
	SheetProducts  = "Products"
	SheetLowStock  = "Low stock"
	SheetMovements = "Movements"
)

const stampLayout = "2006-01-02 15:04:05"

type Source struct {
	Prods  *repos.ProductRepo
	Ledger *repos.MovementRepo
	Stats  *repos.StatsRepo
}

// Export builds the workbook and saves it at path.
func Export(src Source, path string) error {
	f, err := Build(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.SaveAs(path)
}

// Build assembles the workbook in memory.
func Build(src Source) (*excelize.File, error) {
	products, err := src.Prods.List()
	if err != nil {
		return nil, err
	}
	low, err := src.Prods.LowStock()
	if err != nil {
		return nil, err
	}
	moves, err := src.Ledger.List()
	if err != nil {
		return nil, err
	}
	sum, err := src.Stats.Summary()
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetProducts); err != nil {
		return nil, err
	}
	for _, s := range []string{SheetLowStock, SheetMovements} {
		if _, err := f.NewSheet(s); err != nil {
			return nil, err
		}
	}

	rows := [][]any{{"id", "name", "category", "barcode", "unit_price", "stock", "minimum", "value", "status", "supplier"}}
	for _, p := range products {
		rows = append(rows, []any{p.ID, p.Name, category(p), p.Barcode, p.UnitPrice.StringFixed(2),
			p.CurrentStock, p.MinimumStock, p.Value().StringFixed(2), services.Classify(p).Status, p.Supplier})
	}
	rows = append(rows, []any{}, []any{"products", sum.ProductCount, "alerts", sum.AlertCount,
		"inventory value", sum.InventoryValue.StringFixed(2)})
	if err := writeRows(f, SheetProducts, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"id", "name", "category", "stock", "minimum", "shortfall"}}
	for _, p := range low {
		rows = append(rows, []any{p.ID, p.Name, category(p), p.CurrentStock, p.MinimumStock, p.Shortfall()})
	}
	if err := writeRows(f, SheetLowStock, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"id", "timestamp", "product", "type", "quantity", "reason", "user", "remarks"}}
	for _, m := range moves {
		rows = append(rows, []any{m.ID, m.Timestamp.Format(stampLayout), m.ProductName, string(m.Type),
			m.Quantity, m.Reason, m.User, m.Remarks})
	}
	if err := writeRows(f, SheetMovements, rows); err != nil {
		return nil, err
	}
	return f, nil
}

func category(p domain.Product) string {
	if p.CategoryName == nil {
		return ""
	}
	return *p.CategoryName
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
