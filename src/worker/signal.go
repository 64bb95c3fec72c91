package worker

import (
	"context"
	"math"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/anvesh2019/dhan-trading/src/metrics"
	"github.com/anvesh2019/dhan-trading/src/models"
	"github.com/anvesh2019/dhan-trading/src/pubsub"
	"github.com/anvesh2019/dhan-trading/src/services"
)

// Screener yields trade signals for a side. ChartinkClient implements it.
type Screener interface {
	FetchSignals(ctx context.Context, side models.TransactionType, scanClause string) ([]models.ScreenerSignal, error)
}

// SecurityResolver maps a trading symbol to the broker's security id.
// InstrumentMaster implements it.
type SecurityResolver interface {
	Resolve(symbol string) (string, bool)
}

type SignalConfig struct {
	LoopInterval time.Duration
	CutoffHour   int
	CutoffMinute int
	// Capital cap per signal, in account currency.
	SignalAmount float64
	MaxPositions int
	// Minimum time between two entries on the same symbol.
	Cooldown time.Duration
	// Fraction of the available balance held back from sizing.
	BufferRatio float64
	// Symbols whose margin leverage comes in under this are not traded.
	MinLeverage float64
	// Stop distance and trailing jump, as fractions of the entry price.
	TriggerPct float64
	StepPct    float64
	TickSize   float64
	// Fill polling bounds after an order is placed.
	FillTimeout  time.Duration
	PollInterval time.Duration
	// Last-price fetch retries, with exponential backoff between attempts.
	LTPRetries    int
	LTPRetryDelay time.Duration
	// Symbols never traded regardless of what the screener says.
	ExcludedSymbols map[string]struct{}
}

// SignalWorker turns screener signals into super orders: a market entry with a
// broker-managed stop loss and trailing jump attached. It also sweeps the order
// book for manually placed intraday entries and converts them to super orders
// so nothing trades unprotected.
type SignalWorker struct {
	wg       *sync.WaitGroup
	broker   services.TradingBroker
	screener Screener
	resolver SecurityResolver
	scans    *models.ScanConfig
	cfg      SignalConfig
	now      func() time.Time

	mu        sync.Mutex
	lastEntry map[string]time.Time
}

func NewSignalWorker(wg *sync.WaitGroup, broker services.TradingBroker, screener Screener, resolver SecurityResolver, scans *models.ScanConfig, cfg SignalConfig, location *time.Location) *SignalWorker {
	return &SignalWorker{
		wg:       wg,
		broker:   broker,
		screener: screener,
		resolver: resolver,
		scans:    scans,
		cfg:      cfg,
		now: func() time.Time {
			return time.Now().In(location)
		},
		lastEntry: make(map[string]time.Time),
	}
}

func (w *SignalWorker) beforeCutoff(t time.Time) bool {
	if t.Hour() != w.cfg.CutoffHour {
		return t.Hour() < w.cfg.CutoffHour
	}

	return t.Minute() < w.cfg.CutoffMinute
}

func cooldownKey(symbol string, side models.TransactionType) string {
	return symbol + ":" + string(side)
}

func (w *SignalWorker) onCooldown(symbol string, side models.TransactionType, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	last, ok := w.lastEntry[cooldownKey(symbol, side)]
	if !ok {
		return false
	}

	return now.Sub(last) < w.cfg.Cooldown
}

func (w *SignalWorker) recordEntry(symbol string, side models.TransactionType, now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastEntry[cooldownKey(symbol, side)] = now
}

// computeQuantity sizes an entry: deployable capital is the available balance
// less the buffer, capped at SignalAmount, then multiplied by the broker's
// leverage for the security. A symbol whose leverage comes in under the
// configured minimum is not eligible and sizes to zero.
func (w *SignalWorker) computeQuantity(ctx context.Context, symbol, securityID string, price float64) (int, error) {
	leverage, err := w.broker.FetchMarginLeverage(ctx, securityID, price)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_margin").Inc()
		return 0, err
	}

	if leverage < w.cfg.MinLeverage {
		log.Infof("SignalWorker.computeQuantity: %s leverage %.1fx below minimum %.1fx, not eligible", symbol, leverage, w.cfg.MinLeverage)
		return 0, nil
	}

	balance, err := w.broker.FetchAvailableBalance(ctx)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_balance").Inc()
		return 0, err
	}

	capital := balance * (1 - w.cfg.BufferRatio)
	if w.cfg.SignalAmount > 0 && capital > w.cfg.SignalAmount {
		capital = w.cfg.SignalAmount
	}

	return int(math.Floor(capital * leverage / price)), nil
}

// fetchLastPrice retries the quote with exponential backoff; Chartink can emit
// a signal moments before the quote feed has the symbol.
func (w *SignalWorker) fetchLastPrice(ctx context.Context, securityID string) (float64, error) {
	delay := w.cfg.LTPRetryDelay

	var lastErr error
	for attempt := 0; attempt <= w.cfg.LTPRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(delay):
			}

			delay *= 2
		}

		price, err := w.broker.FetchLastPrice(ctx, securityID)
		if err == nil {
			return price, nil
		}

		lastErr = err
	}

	return 0, lastErr
}

// stopPrice derives the attached stop from the entry price: below for buys,
// above for sells, rounded to the tick grid.
func (w *SignalWorker) stopPrice(side models.TransactionType, price float64) float64 {
	if side == models.TransactionTypeBuy {
		return models.RoundToTick(price*(1-w.cfg.TriggerPct), w.cfg.TickSize)
	}

	return models.RoundToTick(price*(1+w.cfg.TriggerPct), w.cfg.TickSize)
}

func (w *SignalWorker) handleSignal(ctx context.Context, signal models.ScreenerSignal, openPositions []*models.Position) {
	now := w.now()

	if _, excluded := w.cfg.ExcludedSymbols[signal.Symbol]; excluded {
		log.Debugf("SignalWorker.handleSignal: %s is excluded", signal.Symbol)
		return
	}

	if w.onCooldown(signal.Symbol, signal.Side, now) {
		log.Debugf("SignalWorker.handleSignal: %s is on cooldown", signal.Symbol)
		return
	}

	if w.cfg.MaxPositions > 0 && len(openPositions) >= w.cfg.MaxPositions {
		log.Infof("SignalWorker.handleSignal: position cap %d reached, dropping %s", w.cfg.MaxPositions, signal.Symbol)
		return
	}

	for _, position := range openPositions {
		if position.Symbol == signal.Symbol {
			log.Debugf("SignalWorker.handleSignal: %s already has an open position", signal.Symbol)
			return
		}
	}

	securityID, ok := w.resolver.Resolve(signal.Symbol)
	if !ok {
		log.Warnf("SignalWorker.handleSignal: %s not found in the instrument master", signal.Symbol)
		return
	}

	price, err := w.fetchLastPrice(ctx, securityID)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_ltp").Inc()
		log.Errorf("SignalWorker.handleSignal: failed to fetch last price for %s: %v", signal.Symbol, err)
		return
	}

	quantity, err := w.computeQuantity(ctx, signal.Symbol, securityID, price)
	if err != nil {
		log.Errorf("SignalWorker.handleSignal: failed to size entry for %s: %v", signal.Symbol, err)
		return
	}

	if quantity <= 0 {
		log.Infof("SignalWorker.handleSignal: %s sized to zero at %.2f, skipping", signal.Symbol, price)
		return
	}

	stopLoss := w.stopPrice(signal.Side, price)
	trailingJump := models.RoundToTick(price*w.cfg.StepPct, w.cfg.TickSize)

	orderID, err := w.broker.PlaceSuperOrder(ctx, &services.SuperOrderRequest{
		Symbol:        signal.Symbol,
		SecurityID:    securityID,
		Side:          signal.Side,
		Quantity:      quantity,
		StopLossPrice: stopLoss,
		TrailingJump:  trailingJump,
	})
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("place_super_order").Inc()
		log.Errorf("SignalWorker.handleSignal: failed to place super order for %s: %v", signal.Symbol, err)
		return
	}

	metrics.SuperOrders.WithLabelValues(string(signal.Side)).Inc()
	w.recordEntry(signal.Symbol, signal.Side, now)

	log.Infof("SignalWorker.handleSignal: super order %s %s qty=%d entry~%.2f stop=%.2f jump=%.2f (orderID=%s)", signal.Symbol, signal.Side, quantity, price, stopLoss, trailingJump, orderID)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.pollForFill(ctx, orderID, securityID, signal.Symbol, quantity, signal.Side)
	}()
}

// pollForFill watches the order list until the placed order fills, dies or the
// timeout lapses. When the placement response carried no order id the ranked
// candidate matcher picks the order instead.
func (w *SignalWorker) pollForFill(ctx context.Context, orderID, securityID, symbol string, quantity int, side models.TransactionType) {
	deadline := w.now().Add(w.cfg.FillTimeout)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if w.now().After(deadline) {
			log.Warnf("SignalWorker.pollForFill: gave up waiting for %s (orderID=%s)", symbol, orderID)
			return
		}

		orders, err := w.broker.FetchOrderList(ctx)
		if err != nil {
			metrics.BrokerErrors.WithLabelValues("fetch_orders").Inc()
			log.Errorf("SignalWorker.pollForFill: failed to fetch orders: %v", err)
			continue
		}

		var candidate *models.Order
		for _, order := range orders {
			if orderID != "" && order.OrderID == orderID {
				candidate = order
				break
			}
		}

		if candidate == nil {
			candidate = MatchOrderCandidate(orders, securityID, symbol, quantity, side)
		}

		if candidate == nil {
			continue
		}

		if candidate.Status.IsFilled() {
			pubsub.Publish(pubsub.TopicOrderFilled, models.OrderFilledEvent{
				Symbol:    symbol,
				Side:      side,
				Quantity:  candidate.FilledQuantity,
				FillPrice: candidate.AvgFillPrice,
				Status:    candidate.Status,
				OrderID:   candidate.OrderID,
			})

			log.Infof("SignalWorker.pollForFill: %s filled qty=%d avg=%.2f (orderID=%s)", symbol, candidate.FilledQuantity, candidate.AvgFillPrice, candidate.OrderID)
			return
		}

		if candidate.Status.IsTerminal() {
			log.Warnf("SignalWorker.pollForFill: %s ended %s without filling (orderID=%s)", symbol, candidate.Status, candidate.OrderID)
			return
		}
	}
}

// sweepManualEntries converts actionable intraday entry orders placed outside
// the bot into super orders. When the broker refuses the conversion the order
// is cancelled and re-placed as a super order at the current price.
func (w *SignalWorker) sweepManualEntries(ctx context.Context) {
	orders, err := w.broker.FetchOrderList(ctx)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_orders").Inc()
		log.Errorf("SignalWorker.sweepManualEntries: failed to fetch orders: %v", err)
		return
	}

	for _, order := range orders {
		if order.Type.IsStopKind() {
			continue
		}

		if order.Product != models.ProductTypeIntraday {
			continue
		}

		if !order.Status.IsActionable() {
			continue
		}

		if order.IsSuperTagged() {
			continue
		}

		err := w.broker.ConvertToSuperOrder(ctx, order.OrderID)
		if err == nil {
			log.Infof("SignalWorker.sweepManualEntries: converted %s to super order (orderID=%s)", order.Symbol, order.OrderID)
			continue
		}

		log.Warnf("SignalWorker.sweepManualEntries: conversion refused for %s, replacing (orderID=%s): %v", order.Symbol, order.OrderID, err)

		if err := w.broker.CancelOrder(ctx, order.OrderID); err != nil {
			metrics.BrokerErrors.WithLabelValues("cancel_order").Inc()
			log.Errorf("SignalWorker.sweepManualEntries: failed to cancel %s (orderID=%s): %v", order.Symbol, order.OrderID, err)
			continue
		}

		price, err := w.broker.FetchLastPrice(ctx, order.SecurityID)
		if err != nil {
			metrics.BrokerErrors.WithLabelValues("fetch_ltp").Inc()
			log.Errorf("SignalWorker.sweepManualEntries: failed to fetch last price for %s: %v", order.Symbol, err)
			continue
		}

		if _, err := w.broker.PlaceSuperOrder(ctx, &services.SuperOrderRequest{
			Symbol:        order.Symbol,
			SecurityID:    order.SecurityID,
			Side:          order.Side,
			Quantity:      order.Quantity,
			StopLossPrice: w.stopPrice(order.Side, price),
			TrailingJump:  models.RoundToTick(price*w.cfg.StepPct, w.cfg.TickSize),
		}); err != nil {
			metrics.BrokerErrors.WithLabelValues("place_super_order").Inc()
			log.Errorf("SignalWorker.sweepManualEntries: failed to re-place %s as super order: %v", order.Symbol, err)
			continue
		}

		metrics.SuperOrders.WithLabelValues(string(order.Side)).Inc()
	}
}

// runOnce executes one scan pass: fetch signals for both sides, act on each,
// then sweep manual entries.
func (w *SignalWorker) runOnce(ctx context.Context) {
	positions, err := w.broker.FetchPositions(ctx)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_positions").Inc()
		log.Errorf("SignalWorker.runOnce: failed to fetch positions: %v", err)
		return
	}

	scans := []struct {
		side   models.TransactionType
		clause string
	}{
		{models.TransactionTypeBuy, w.scans.BuyScanClause},
		{models.TransactionTypeSell, w.scans.SellScanClause},
	}

	for _, scan := range scans {
		if scan.clause == "" {
			continue
		}

		signals, err := w.screener.FetchSignals(ctx, scan.side, scan.clause)
		if err != nil {
			log.Errorf("SignalWorker.runOnce: %s scan failed: %v", scan.side, err)
			continue
		}

		for _, signal := range signals {
			metrics.Signals.WithLabelValues(string(signal.Side)).Inc()
			w.handleSignal(ctx, signal, positions)
		}
	}

	w.sweepManualEntries(ctx)
}

// Start launches the scan loop. The loop exits for the day once the cutoff
// passes; entries opened near the close would not have room to work.
func (w *SignalWorker) Start(ctx context.Context) {
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		log.Infof("signal worker started (interval %v)", w.cfg.LoopInterval)

		ticker := time.NewTicker(w.cfg.LoopInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping signal worker")
				return
			case <-ticker.C:
				if !w.beforeCutoff(w.now()) {
					log.Info("signal worker: cutoff reached, done for the day")
					return
				}

				w.runOnce(ctx)
			}
		}
	}()
}
