package domain

// Category groups assets for theming and mission predicates.
type Category string

const (
	CategoryStock      Category = "stock"
	CategoryCommodity  Category = "commodity"
	CategoryCrypto     Category = "crypto"
	CategoryRealEstate Category = "real_estate"
)

// Asset is a single tradeable instrument in the simulation.
// Price fields are float64 because the stochastic model works in
// continuous space; the ledger converts at its boundary.
type Asset struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	Price         float64  `json:"price"`
	PreviousPrice float64  `json:"previous_price"`
	Volatility    float64  `json:"volatility"` // > 0, relative per-tick amplitude
}

// ChangePct returns the percentage move from the previous price.
func (a *Asset) ChangePct() float64 {
	if a.PreviousPrice == 0 {
		return 0
	}
	return (a.Price - a.PreviousPrice) / a.PreviousPrice * 100
}

// Direction returns "up", "down", or "flat" for the last move.
func (a *Asset) Direction() string {
	switch {
	case a.Price > a.PreviousPrice:
		return "up"
	case a.Price < a.PreviousPrice:
		return "down"
	default:
		return "flat"
	}
}
