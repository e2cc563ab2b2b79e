package service

import (
	"context"

	"order-engine/internal/models"
	"order-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductInfo is the narrow catalog projection the engine needs.
type ProductInfo struct {
	Price    decimal.Decimal
	IsActive bool
}

// Catalog is the external product catalog collaborator. GetProduct
// returns nil (no error) when the product does not exist.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error)
}

// resnapshotLines re-resolves catalog prices for the given cart lines,
// persisting corrected line snapshots (price = unit price × quantity)
// where the stored value drifted, and returns the resulting subtotal.
// Fails with InactiveProductsError listing every inactive product; no
// partial totals are returned in that case.
func resnapshotLines(ctx context.Context, catalog Catalog, lines repository.OrderLineRepo, cart []models.OrderLine) (decimal.Decimal, error) {
	subtotal := decimal.Zero
	var inactive []uuid.UUID

	for i := range cart {
		line := &cart[i]
		info, err := catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		if info == nil {
			return decimal.Zero, ErrProductNotFound
		}
		if !info.IsActive {
			inactive = append(inactive, line.ProductID)
			continue
		}

		price := info.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if !price.Equal(line.Price) {
			if err := lines.UpdatePrice(ctx, line.ID, price); err != nil {
				return decimal.Zero, err
			}
			line.Price = price
		}
		subtotal = subtotal.Add(price)
	}

	if len(inactive) > 0 {
		return decimal.Zero, &InactiveProductsError{ProductIDs: inactive}
	}
	return subtotal, nil
}
