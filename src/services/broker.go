package services

import (
	"context"
	"time"

	"github.com/anvesh2019/dhan-trading/src/models"
)

// PlaceStopLossRequest describes a protective SL-M order sized to a position's
// full quantity in the closing direction.
type PlaceStopLossRequest struct {
	Symbol       string
	SecurityID   string
	Side         models.TransactionType
	Quantity     int
	TriggerPrice float64
}

// SuperOrderRequest describes a bracket-style entry: market order plus an
// attached stop loss and trailing jump.
type SuperOrderRequest struct {
	Symbol        string
	SecurityID    string
	Side          models.TransactionType
	Quantity      int
	StopLossPrice float64
	TargetPrice   float64
	TrailingJump  float64
	Tag           string
}

// Broker is the surface the stop-loss reconciler needs. DhanClient implements
// it; tests substitute a fake.
type Broker interface {
	FetchPositions(ctx context.Context) ([]*models.Position, error)
	FetchOrderList(ctx context.Context) ([]*models.Order, error)
	PlaceStopLossOrder(ctx context.Context, req *PlaceStopLossRequest) (string, error)
	CancelOrder(ctx context.Context, orderID string) error
	FetchPreviousCandle(ctx context.Context, securityID string, interval time.Duration) (*models.Candle, error)
}

// TradingBroker extends Broker with the operations the screener-driven
// super-order worker needs.
type TradingBroker interface {
	Broker
	FetchLastPrice(ctx context.Context, securityID string) (float64, error)
	FetchAvailableBalance(ctx context.Context) (float64, error)
	FetchMarginLeverage(ctx context.Context, securityID string, price float64) (float64, error)
	PlaceSuperOrder(ctx context.Context, req *SuperOrderRequest) (string, error)
	ConvertToSuperOrder(ctx context.Context, orderID string) error
}
