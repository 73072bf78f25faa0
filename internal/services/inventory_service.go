package services

import (
	"fmt"

	"stockledger/internal/domain"
	"stockledger/internal/repos"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

type InventoryService struct {
	Prods *repos.ProductRepo
}

func NewInventoryService(prods *repos.ProductRepo) *InventoryService {
	return &InventoryService{Prods: prods}
}

// CheckAvailability converts a product's stock into IN_STOCK / LOW_STOCK /
// OUT_OF_STOCK against its own minimum.
func (s *InventoryService) CheckAvailability(productID int64) (domain.Availability, error) {
	p, err := s.Prods.Get(productID)
	if err != nil {
		return domain.Availability{}, err
	}
	if p == nil {
		return domain.Availability{}, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	return Classify(*p), nil
}

func Classify(p domain.Product) domain.Availability {
	status := InStock
	switch {
	case p.CurrentStock <= 0:
		status = OutOfStock
	case p.IsLow():
		status = LowStock
	}
	return domain.Availability{Status: status, Qty: p.CurrentStock, Minimum: p.MinimumStock}
}
