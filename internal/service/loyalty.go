package service

import (
	"context"
	"fmt"
	"os"
	"sort"

	"order-engine/internal/models"
	"order-engine/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Tier is one row of the cashback table: buyers whose lifetime spend
// reaches MinSpent earn Rate percent of each completed order.
type Tier struct {
	Name     string          `yaml:"name"`
	Rate     decimal.Decimal `yaml:"rate"`
	MinSpent decimal.Decimal `yaml:"min_spent"`
}

// DefaultTiers is the built-in cashback table, used when no tier file
// is configured.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Standard", Rate: decimal.NewFromFloat(1.0), MinSpent: decimal.Zero},
		{Name: "Premium", Rate: decimal.NewFromFloat(1.5), MinSpent: decimal.NewFromInt(500000)},
	}
}

// LoadTiers reads a cashback tier table from a YAML file. The table is
// data, not code, so deployments can extend it without a rebuild.
func LoadTiers(path string) ([]Tier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers file: %w", err)
	}
	var doc struct {
		Tiers []Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tiers file: %w", err)
	}
	if len(doc.Tiers) == 0 {
		return nil, fmt.Errorf("tiers file %s defines no tiers", path)
	}
	return doc.Tiers, nil
}

// LoyaltyEngine accrues cashback on completed orders and derives bonus
// balances from the ledger.
type LoyaltyEngine struct {
	tiers []Tier
}

func NewLoyaltyEngine(tiers []Tier) *LoyaltyEngine {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinSpent.LessThan(sorted[j].MinSpent)
	})
	return &LoyaltyEngine{tiers: sorted}
}

// GetTier returns the highest-threshold tier the lifetime spend
// qualifies for. Pure function of totalSpent.
func (e *LoyaltyEngine) GetTier(totalSpent decimal.Decimal) Tier {
	tier := e.tiers[0]
	for _, t := range e.tiers {
		if totalSpent.GreaterThanOrEqual(t.MinSpent) {
			tier = t
		}
	}
	return tier
}

// Accrue credits cashback for a completed order: appends an INCREASE
// ledger entry, stamps the earned amount on the order and bumps the
// buyer's lifetime spend, all against the supplied (transactional)
// repository bundle. A second call for the same order is a no-op — the
// ledger is checked for an existing accrual before crediting.
func (e *LoyaltyEngine) Accrue(ctx context.Context, tx *repository.Repository, buyerID uuid.UUID, orderID uint, orderTotal decimal.Decimal) (decimal.Decimal, error) {
	already, err := tx.Bonus.HasAccrualForOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	if already {
		return decimal.Zero, nil
	}

	spent := decimal.Zero
	if acc, err := tx.Loyalty.Get(ctx, buyerID); err != nil {
		return decimal.Zero, err
	} else if acc != nil {
		spent = acc.TotalSpent
	}

	tier := e.GetTier(spent)
	cashback := orderTotal.Mul(tier.Rate).Div(percentDivisor).Floor()
	if !cashback.IsPositive() {
		return decimal.Zero, nil
	}

	entry := &models.BonusEntry{
		BuyerID:     buyerID,
		OrderID:     &orderID,
		Type:        models.BonusIncrease,
		Amount:      cashback,
		Description: fmt.Sprintf("%s cashback for order #%d", tier.Name, orderID),
	}
	if err := tx.Bonus.Append(ctx, entry); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Orders.UpdateFields(ctx, orderID, map[string]any{"bonus_earned": cashback}); err != nil {
		return decimal.Zero, err
	}
	if err := tx.Loyalty.AddSpent(ctx, buyerID, orderTotal); err != nil {
		return decimal.Zero, err
	}
	return cashback, nil
}

// Balance derives the buyer's bonus balance, floored at 0.
func (e *LoyaltyEngine) Balance(ctx context.Context, repo *repository.Repository, buyerID uuid.UUID) (decimal.Decimal, error) {
	balance, err := repo.Bonus.Balance(ctx, buyerID)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsNegative() {
		return decimal.Zero, nil
	}
	return balance, nil
}
