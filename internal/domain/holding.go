package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Holding is the per-asset position. Long and short legs coexist and are
// never netted against each other.
type Holding struct {
	AssetID       string          `json:"asset_id"`
	Quantity      decimal.Decimal `json:"quantity"`        // long units, >= 0
	ShortQuantity decimal.Decimal `json:"short_quantity"`  // shorted units, >= 0
	AvgShortPrice decimal.Decimal `json:"avg_short_price"` // cost basis, meaningful when ShortQuantity > 0
}

// IsFlat reports whether the holding carries no position at all.
func (h *Holding) IsFlat() bool {
	return h.Quantity.IsZero() && h.ShortQuantity.IsZero()
}

// AddLong increases the long leg by units.
func (h *Holding) AddLong(units decimal.Decimal) {
	h.Quantity = h.Quantity.Add(units)
}

// ReduceLong decreases the long leg. The caller must have verified the
// position is large enough.
func (h *Holding) ReduceLong(units decimal.Decimal) {
	h.Quantity = h.Quantity.Sub(units)
}

// AddShort increases the short leg and folds the entry price into the
// weighted-average short basis.
func (h *Holding) AddShort(units, price decimal.Decimal) {
	newQty := h.ShortQuantity.Add(units)
	if newQty.IsZero() {
		return
	}
	prior := h.AvgShortPrice.Mul(h.ShortQuantity)
	entry := price.Mul(units)
	h.AvgShortPrice = prior.Add(entry).Div(newQty)
	h.ShortQuantity = newQty
}

// ReduceShort decreases the short leg. The basis resets when the leg is
// fully covered.
func (h *Holding) ReduceShort(units decimal.Decimal) {
	h.ShortQuantity = h.ShortQuantity.Sub(units)
	if h.ShortQuantity.IsZero() {
		h.AvgShortPrice = decimal.Zero
	}
}

// MarketValue returns the holding's contribution to net worth at the
// given price: long value plus short profit over the entry basis.
func (h *Holding) MarketValue(price decimal.Decimal) decimal.Decimal {
	value := h.Quantity.Mul(price)
	if h.ShortQuantity.IsPositive() {
		value = value.Add(h.ShortQuantity.Mul(h.AvgShortPrice.Sub(price)))
	}
	return value
}

// VerifyInvariant panics if the holding violates its consistency rules.
// Call after any mutation; a violation means a ledger bug, not bad input.
func (h *Holding) VerifyInvariant() {
	if h.Quantity.IsNegative() {
		panic(fmt.Sprintf("HOLDING_INVARIANT_NEGATIVE_QUANTITY: %s = %s", h.AssetID, h.Quantity))
	}
	if h.ShortQuantity.IsNegative() {
		panic(fmt.Sprintf("HOLDING_INVARIANT_NEGATIVE_SHORT: %s = %s", h.AssetID, h.ShortQuantity))
	}
	if h.ShortQuantity.IsPositive() && h.AvgShortPrice.IsNegative() {
		panic(fmt.Sprintf("HOLDING_INVARIANT_NEGATIVE_BASIS: %s = %s", h.AssetID, h.AvgShortPrice))
	}
}

// Portfolio is the player ledger: cash plus per-asset holdings.
type Portfolio struct {
	Cash     decimal.Decimal
	holdings map[string]*Holding
}

// NewPortfolio creates a portfolio with the given starting cash.
func NewPortfolio(startingCash decimal.Decimal) *Portfolio {
	return &Portfolio{
		Cash:     startingCash,
		holdings: make(map[string]*Holding),
	}
}

// Holding returns the holding for an asset, creating it if absent.
func (p *Portfolio) Holding(assetID string) *Holding {
	h, ok := p.holdings[assetID]
	if !ok {
		h = &Holding{AssetID: assetID}
		p.holdings[assetID] = h
	}
	return h
}

// PeekHolding returns the holding without creating one.
func (p *Portfolio) PeekHolding(assetID string) (*Holding, bool) {
	h, ok := p.holdings[assetID]
	return h, ok
}

// Credit adds cash.
func (p *Portfolio) Credit(amount decimal.Decimal) {
	p.Cash = p.Cash.Add(amount)
}

// Debit removes cash. The caller must have verified solvency.
func (p *Portfolio) Debit(amount decimal.Decimal) {
	p.Cash = p.Cash.Sub(amount)
}

// NetWorth computes cash + long market value + short P&L against the
// supplied price map. Assets without a price contribute only short basis
// consistency, never a fabricated value.
func (p *Portfolio) NetWorth(prices map[string]decimal.Decimal) decimal.Decimal {
	total := p.Cash
	for id, h := range p.holdings {
		price, ok := prices[id]
		if !ok {
			continue
		}
		total = total.Add(h.MarketValue(price))
	}
	return total
}

// VerifyAll checks invariants on cash and every holding.
func (p *Portfolio) VerifyAll() {
	if p.Cash.IsNegative() {
		panic(fmt.Sprintf("PORTFOLIO_INVARIANT_NEGATIVE_CASH: %s", p.Cash))
	}
	for _, h := range p.holdings {
		h.VerifyInvariant()
	}
}

// Snapshot returns a copy of all non-flat holdings keyed by asset id.
func (p *Portfolio) Snapshot() map[string]Holding {
	out := make(map[string]Holding, len(p.holdings))
	for id, h := range p.holdings {
		if h.IsFlat() {
			continue
		}
		out[id] = *h
	}
	return out
}
