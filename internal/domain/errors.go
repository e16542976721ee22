package domain

import "errors"

var (
	// ErrInsufficientFunds is returned when cash cannot cover a buy or the
	// margin requirement of a short.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings is returned when a sell exceeds the long
	// position or a cover exceeds the short position.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrInvalidAsset is returned for an unknown asset id.
	ErrInvalidAsset = errors.New("invalid asset")

	// ErrInvalidState is returned when an action is attempted in a game
	// state that forbids it (e.g. trading after game over).
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidAmount is returned for zero or negative trade amounts.
	ErrInvalidAmount = errors.New("invalid amount")
)

// TradeError wraps a trade rejection with the asset and action involved.
// The ledger is guaranteed unchanged when one of these is returned.
type TradeError struct {
	AssetID string
	Action  string
	Err     error
}

func (e *TradeError) Error() string {
	return "trade " + e.Action + " " + e.AssetID + ": " + e.Err.Error()
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

// NewTradeError creates a TradeError for the given rejection cause.
func NewTradeError(assetID, action string, err error) *TradeError {
	return &TradeError{AssetID: assetID, Action: action, Err: err}
}
