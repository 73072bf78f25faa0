package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// Product is a products row joined with the name of its category.
// CategoryID and CategoryName are nil for uncategorised products.
type Product struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	CategoryID   *int64          `db:"category_id"`
	CategoryName *string         `db:"category_name"`
	Barcode      string          `db:"barcode"`
	UnitPrice    decimal.Decimal `db:"unit_price"`
	CurrentStock int             `db:"current_stock"`
	MinimumStock int             `db:"minimum_stock"`
	Supplier     string          `db:"supplier"`
	Description  string          `db:"description"`
	AddedAt      time.Time       `db:"added_at"`
}

// Shortfall is current_stock - minimum_stock; negative means low stock.
func (p Product) Shortfall() int { return p.CurrentStock - p.MinimumStock }

func (p Product) IsLow() bool { return p.CurrentStock < p.MinimumStock }

// Value is current_stock * unit_price.
func (p Product) Value() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

type MovementType string

const (
	Inbound  MovementType = "INBOUND"
	Outbound MovementType = "OUTBOUND"
)

func (t MovementType) Valid() bool { return t == Inbound || t == Outbound }

// Delta is the signed stock change a movement of qty units applies.
func (t MovementType) Delta(qty int) int {
	if t == Outbound {
		return -qty
	}
	return qty
}

// Movement is one ledger row joined with its product name.
type Movement struct {
	ID          int64        `db:"id"`
	ProductID   int64        `db:"product_id"`
	ProductName string       `db:"product_name"`
	Type        MovementType `db:"type"`
	Quantity    int          `db:"quantity"`
	Reason      string       `db:"reason"`
	User        string       `db:"user_name"`
	Timestamp   time.Time    `db:"timestamp"`
	Remarks     string       `db:"remarks"`
}

type Summary struct {
	ProductCount   int             `db:"product_count" json:"product_count"`
	InventoryValue decimal.Decimal `db:"-" json:"inventory_value"`
	AlertCount     int             `db:"alert_count" json:"alert_count"`
}

type Availability struct {
	Status  string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty     int    `json:"qty"`
	Minimum int    `json:"minimum"`
}
