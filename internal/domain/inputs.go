package domain

import "github.com/shopspring/decimal"

// NewProduct carries the fields accepted when a product is created.
// Empty Barcode means the product has none.
type NewProduct struct {
	Name         string
	CategoryID   *int64
	Barcode      string
	UnitPrice    decimal.Decimal
	InitialStock int
	MinimumStock int
	Supplier     string
	Description  string
}

// NewMovement carries one ledger entry to be recorded.
type NewMovement struct {
	ProductID int64
	Type      MovementType
	Quantity  int
	Reason    string
	User      string
	Remarks   string
}

// CategoryPatch lists the category fields an update may change.
// A nil field is left untouched.
type CategoryPatch struct {
	Name        *string
	Description *string
}

func (p CategoryPatch) Empty() bool { return p.Name == nil && p.Description == nil }

// ProductPatch lists the product fields an update may change. A nil field is
// left untouched. ClearCategory detaches the product from its category and
// wins over CategoryID. An empty Barcode clears the barcode.
//
// CurrentStock is an administrative correction: it overwrites the cached
// stock level without writing a ledger entry.
type ProductPatch struct {
	Name          *string
	CategoryID    *int64
	ClearCategory bool
	Barcode       *string
	UnitPrice     *decimal.Decimal
	CurrentStock  *int
	MinimumStock  *int
	Supplier      *string
	Description   *string
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.CategoryID == nil && !p.ClearCategory && p.Barcode == nil &&
		p.UnitPrice == nil && p.CurrentStock == nil && p.MinimumStock == nil &&
		p.Supplier == nil && p.Description == nil
}

// Ptr returns a pointer to v, handy for building patches.
func Ptr[T any](v T) *T { return &v }
