package engine

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/NgoTomek/PortfolioPanic/internal/domain"
)

// TradeAction is one of the four ledger operations.
type TradeAction string

const (
	ActionBuy   TradeAction = "buy"
	ActionSell  TradeAction = "sell"
	ActionShort TradeAction = "short"
	ActionCover TradeAction = "cover"
)

// ParseTradeAction validates an action string from the boundary.
func ParseTradeAction(s string) (TradeAction, error) {
	switch TradeAction(s) {
	case ActionBuy, ActionSell, ActionShort, ActionCover:
		return TradeAction(s), nil
	}
	return "", fmt.Errorf("unknown trade action %q", s)
}

// TradeResult reports an applied trade. Amounts are exact decimals.
type TradeResult struct {
	AssetID     string          `json:"asset_id"`
	Action      TradeAction     `json:"action"`
	Units       decimal.Decimal `json:"units"`
	Price       decimal.Decimal `json:"price"`
	Cash        decimal.Decimal `json:"cash"`         // post-trade balance
	RealizedPnL decimal.Decimal `json:"realized_pnl"` // cover only
}

// ExecuteTrade applies one trade against the ledger. amount is currency
// notional; units are derived from the asset's current price. Trades
// are atomic: any rejection leaves cash and holdings untouched.
//
// Short margin policy: opening a short of notional N requires
// cash >= N * MarginRatio. Cash is not debited at open; P&L lands at
// cover, and a cover whose loss would overdraw cash is rejected.
func (s *Session) ExecuteTrade(assetID string, action TradeAction, amount decimal.Decimal) (TradeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res TradeResult

	switch s.state {
	case StateGameOver, StateNotStarted:
		return res, domain.NewTradeError(assetID, string(action), domain.ErrInvalidState)
	}

	asset, ok := s.assetIdx[assetID]
	if !ok {
		return res, domain.NewTradeError(assetID, string(action), domain.ErrInvalidAsset)
	}
	if !amount.IsPositive() {
		return res, domain.NewTradeError(assetID, string(action), domain.ErrInvalidAmount)
	}

	price := decimal.NewFromFloat(asset.Price)
	units := amount.Div(price)
	h := s.portfolio.Holding(assetID)

	switch action {
	case ActionBuy:
		if s.portfolio.Cash.LessThan(amount) {
			return res, domain.NewTradeError(assetID, string(action), domain.ErrInsufficientFunds)
		}
		s.portfolio.Debit(amount)
		h.AddLong(units)

	case ActionSell:
		if h.Quantity.LessThan(units) {
			return res, domain.NewTradeError(assetID, string(action), domain.ErrInsufficientHoldings)
		}
		h.ReduceLong(units)
		s.portfolio.Credit(amount)

	case ActionShort:
		margin := amount.Mul(s.cfg.MarginRatio)
		if s.portfolio.Cash.LessThan(margin) {
			return res, domain.NewTradeError(assetID, string(action), domain.ErrInsufficientFunds)
		}
		h.AddShort(units, price)
		s.shortTrades++

	case ActionCover:
		if h.ShortQuantity.LessThan(units) {
			return res, domain.NewTradeError(assetID, string(action), domain.ErrInsufficientHoldings)
		}
		pnl := units.Mul(h.AvgShortPrice.Sub(price))
		if s.portfolio.Cash.Add(pnl).IsNegative() {
			return res, domain.NewTradeError(assetID, string(action), domain.ErrInsufficientFunds)
		}
		h.ReduceShort(units)
		s.portfolio.Credit(pnl)
		res.RealizedPnL = pnl

	default:
		return res, domain.NewTradeError(assetID, string(action), domain.ErrInvalidState)
	}

	s.tradeCount++
	s.portfolio.VerifyAll()

	if s.achievements.Unlock(domain.AchievementFirstTrade) {
		s.log.Info("achievement unlocked", slog.String("id", domain.AchievementFirstTrade))
	}
	if action == ActionShort && s.achievements.Unlock(domain.AchievementFirstShort) {
		s.log.Info("achievement unlocked", slog.String("id", domain.AchievementFirstShort))
	}

	res.AssetID = assetID
	res.Action = action
	res.Units = units
	res.Price = price
	res.Cash = s.portfolio.Cash

	s.log.Info("trade executed",
		slog.String("action", string(action)),
		slog.String("asset", assetID),
		slog.String("amount", amount.String()),
		slog.String("cash", res.Cash.String()))
	return res, nil
}
