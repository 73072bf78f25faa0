package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"stockledger/internal/domain"
	applog "stockledger/internal/log"
)

// SeedDemo inserts a small demo catalogue when the store has no categories.
// Opening stock is received through the ledger so the history explains
// every unit on hand. It is a no-op on a populated store.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return storeErr("seed", err)
	}
	if n > 0 {
		return nil
	}
	applog.Info("seed.demo", nil)

	cats := NewCategoryRepo(db)
	prods := NewProductRepo(db)
	ledger := NewMovementRepo(db, nil)

	drinks, err := cats.Create("Drinks", "Bottled and canned beverages")
	if err != nil {
		return err
	}
	cleaning, err := cats.Create("Cleaning", "Household cleaning supplies")
	if err != nil {
		return err
	}

	demo := []struct {
		p    domain.NewProduct
		recv int
		sold int
	}{
		{domain.NewProduct{Name: "Sparkling water 1L", CategoryID: &drinks, Barcode: "3274080005003",
			UnitPrice: decimal.RequireFromString("0.85"), MinimumStock: 24, Supplier: "Aqua Ltd"}, 48, 30},
		{domain.NewProduct{Name: "Orange juice 1L", CategoryID: &drinks, Barcode: "5449000131805",
			UnitPrice: decimal.RequireFromString("2.10"), MinimumStock: 12, Supplier: "Fresh Co"}, 20, 4},
		{domain.NewProduct{Name: "Dish soap 500ml", CategoryID: &cleaning, Barcode: "8001090621931",
			UnitPrice: decimal.RequireFromString("1.95"), MinimumStock: 10, Supplier: "Clean SA"}, 6, 0},
		{domain.NewProduct{Name: "Sponges x3", UnitPrice: decimal.RequireFromString("1.20"), MinimumStock: 5}, 15, 2},
	}
	for _, d := range demo {
		id, err := prods.Create(d.p)
		if err != nil {
			return err
		}
		if _, err := ledger.Record(domain.NewMovement{ProductID: id, Type: domain.Inbound, Quantity: d.recv,
			Reason: "opening stock", User: "seed"}); err != nil {
			return err
		}
		if d.sold > 0 {
			if _, err := ledger.Record(domain.NewMovement{ProductID: id, Type: domain.Outbound, Quantity: d.sold,
				Reason: "sale", User: "seed"}); err != nil {
				return err
			}
		}
	}
	return nil
}
