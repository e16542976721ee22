package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPortfolio_NetWorth(t *testing.T) {
	p := NewPortfolio(d("1000"))

	h := p.Holding("TECH")
	h.AddLong(d("2"))

	sh := p.Holding("OIL")
	sh.AddShort(d("1"), d("40"))

	prices := map[string]decimal.Decimal{
		"TECH": d("50"),
		"OIL":  d("30"),
	}

	// 1000 cash + 2*50 long + 1*(40-30) short P&L = 1110
	got := p.NetWorth(prices)
	if !got.Equal(d("1110")) {
		t.Errorf("Expected net worth 1110, got %s", got)
	}
}

func TestPortfolio_NetWorthShortLoss(t *testing.T) {
	p := NewPortfolio(d("500"))
	h := p.Holding("GOLD")
	h.AddShort(d("2"), d("100"))

	// Price rose to 130: short P&L = 2*(100-130) = -60
	got := p.NetWorth(map[string]decimal.Decimal{"GOLD": d("130")})
	if !got.Equal(d("440")) {
		t.Errorf("Expected net worth 440, got %s", got)
	}
}

func TestHolding_WeightedShortBasis(t *testing.T) {
	h := &Holding{AssetID: "OIL"}

	h.AddShort(d("2"), d("100"))
	h.AddShort(d("2"), d("200"))

	if !h.ShortQuantity.Equal(d("4")) {
		t.Errorf("Expected short quantity 4, got %s", h.ShortQuantity)
	}
	// (2*100 + 2*200) / 4 = 150
	if !h.AvgShortPrice.Equal(d("150")) {
		t.Errorf("Expected avg short price 150, got %s", h.AvgShortPrice)
	}
}

func TestHolding_LongAndShortCoexist(t *testing.T) {
	h := &Holding{AssetID: "TECH"}
	h.AddLong(d("3"))
	h.AddShort(d("1"), d("80"))

	if !h.Quantity.Equal(d("3")) || !h.ShortQuantity.Equal(d("1")) {
		t.Errorf("Legs should not be netted: long=%s short=%s", h.Quantity, h.ShortQuantity)
	}

	h.ReduceShort(d("1"))
	if !h.AvgShortPrice.IsZero() {
		t.Errorf("Basis should reset when fully covered, got %s", h.AvgShortPrice)
	}
	if h.IsFlat() {
		t.Error("Holding with a long leg is not flat")
	}
}

func TestHolding_InvariantPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for negative quantity")
		}
	}()

	h := &Holding{AssetID: "BAD", Quantity: d("-1")}
	h.VerifyInvariant()
}

func TestPortfolio_SnapshotSkipsFlat(t *testing.T) {
	p := NewPortfolio(d("100"))
	p.Holding("A").AddLong(d("1"))
	p.Holding("B") // created but flat

	snap := p.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Expected 1 holding in snapshot, got %d", len(snap))
	}
	if _, ok := snap["A"]; !ok {
		t.Error("Snapshot should contain A")
	}
}
