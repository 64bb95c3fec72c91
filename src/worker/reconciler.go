package worker

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/anvesh2019/dhan-trading/src/metrics"
	"github.com/anvesh2019/dhan-trading/src/models"
	"github.com/anvesh2019/dhan-trading/src/pubsub"
	"github.com/anvesh2019/dhan-trading/src/router"
	"github.com/anvesh2019/dhan-trading/src/services"
	"github.com/anvesh2019/dhan-trading/src/utils"
)

type ReconcilerConfig struct {
	// Candle interval used to derive stop triggers.
	Interval time.Duration
	TickSize float64
	// Wall-clock cutoff; past it every pass is a no-op.
	CutoffHour   int
	CutoffMinute int
	// Fast watcher cadence bounds; each wakeup re-draws a jittered delay.
	FastMin time.Duration
	FastMax time.Duration
	// Offset past each candle boundary before the trail loop runs, so the
	// just-completed candle is available.
	TrailOffset time.Duration
}

// StopLossReconciler keeps every open intraday position protected by exactly
// one resting SL-M order. It only ever fills gaps and cancels orphans; an
// existing stop, bot- or human-placed, is never modified or replaced.
type StopLossReconciler struct {
	wg     *sync.WaitGroup
	broker services.Broker
	cfg    ReconcilerConfig
	now    func() time.Time

	mu            sync.RWMutex
	lastPositions []*models.Position
	lastOrders    []*models.Order
	lastPass      time.Time
}

func NewStopLossReconciler(wg *sync.WaitGroup, broker services.Broker, cfg ReconcilerConfig, location *time.Location) *StopLossReconciler {
	return &StopLossReconciler{
		wg:     wg,
		broker: broker,
		cfg:    cfg,
		now: func() time.Time {
			return time.Now().In(location)
		},
	}
}

func (r *StopLossReconciler) beforeCutoff(t time.Time) bool {
	if t.Hour() != r.cfg.CutoffHour {
		return t.Hour() < r.cfg.CutoffHour
	}

	return t.Minute() < r.cfg.CutoffMinute
}

// RunOnce executes a single reconciliation pass. Per-symbol failures are
// logged and never abort the pass; a later pass retries.
func (r *StopLossReconciler) RunOnce(ctx context.Context) {
	now := r.now()
	if !r.beforeCutoff(now) {
		log.Debug("StopLossReconciler: cutoff reached; skipping pass")
		return
	}

	positions, err := r.broker.FetchPositions(ctx)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_positions").Inc()
		log.Errorf("StopLossReconciler.RunOnce: failed to fetch positions: %v", err)
		return
	}

	orders, err := r.broker.FetchOrderList(ctx)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_orders").Inc()
		log.Errorf("StopLossReconciler.RunOnce: failed to fetch orders: %v", err)
		return
	}

	activeSymbols := make(map[string]struct{}, len(positions))
	for _, position := range positions {
		activeSymbols[position.Symbol] = struct{}{}
	}

	r.cancelOrphans(ctx, orders, activeSymbols)

	for _, position := range positions {
		r.ensureStop(ctx, position, orders)
	}

	r.mu.Lock()
	r.lastPositions = positions
	r.lastOrders = orders
	r.lastPass = now
	r.mu.Unlock()

	metrics.OpenPositions.Set(float64(len(positions)))
	metrics.ReconcilePasses.Inc()
}

// cancelOrphans cancels every actionable stop order whose symbol has no open
// position. Cancel failures are logged; the order is retried on a later pass.
func (r *StopLossReconciler) cancelOrphans(ctx context.Context, orders []*models.Order, activeSymbols map[string]struct{}) {
	for _, order := range orders {
		if !order.Type.IsStopKind() {
			continue
		}

		if order.Product != models.ProductTypeIntraday {
			continue
		}

		if !order.Status.IsActionable() {
			continue
		}

		if _, ok := activeSymbols[order.Symbol]; ok {
			continue
		}

		if err := r.broker.CancelOrder(ctx, order.OrderID); err != nil {
			metrics.BrokerErrors.WithLabelValues("cancel_order").Inc()
			log.Errorf("StopLossReconciler.cancelOrphans: failed to cancel orphan stop for %s (orderID=%s): %v", order.Symbol, order.OrderID, err)
			continue
		}

		metrics.OrphansCancelled.Inc()
		pubsub.Publish(pubsub.TopicOrphanCancelled, models.OrphanCancelledEvent{
			Symbol:  order.Symbol,
			OrderID: order.OrderID,
		})

		log.Infof("StopLossReconciler.cancelOrphans: cancelled orphan stop for %s (orderID=%s)", order.Symbol, order.OrderID)
	}
}

// ensureStop places a protective SL-M for the position unless one already
// rests at the broker.
func (r *StopLossReconciler) ensureStop(ctx context.Context, position *models.Position, orders []*models.Order) {
	closingSide := position.Direction.ClosingSide()

	if existing := FindRestingStop(orders, position.Symbol, closingSide); existing != nil {
		log.Debugf("StopLossReconciler.ensureStop: %s already protected (orderID=%s trigger=%.2f)", position.Symbol, existing.OrderID, existing.TriggerPrice)
		return
	}

	candle, err := r.broker.FetchPreviousCandle(ctx, position.SecurityID, r.cfg.Interval)
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("fetch_candle").Inc()
		log.Errorf("StopLossReconciler.ensureStop: no previous candle for %s; skipping this pass: %v", position.Symbol, err)
		return
	}

	trigger, err := candle.StopTrigger(position.Direction, r.cfg.TickSize)
	if err != nil {
		log.Errorf("StopLossReconciler.ensureStop: cannot compute trigger for %s; skipping this pass: %v", position.Symbol, err)
		return
	}

	orderID, err := r.broker.PlaceStopLossOrder(ctx, &services.PlaceStopLossRequest{
		Symbol:       position.Symbol,
		SecurityID:   position.SecurityID,
		Side:         closingSide,
		Quantity:     position.Quantity,
		TriggerPrice: trigger,
	})
	if err != nil {
		metrics.BrokerErrors.WithLabelValues("place_order").Inc()
		log.Errorf("StopLossReconciler.ensureStop: failed to place stop for %s: %v", position.Symbol, err)
		return
	}

	metrics.StopsPlaced.WithLabelValues(string(closingSide)).Inc()
	pubsub.Publish(pubsub.TopicStopPlaced, models.StopPlacedEvent{
		Symbol:       position.Symbol,
		Side:         closingSide,
		Quantity:     position.Quantity,
		TriggerPrice: trigger,
		OrderID:      orderID,
	})

	log.Infof("StopLossReconciler.ensureStop: placed SL-M for %s %s qty=%d trigger=%.2f (orderID=%s)", position.Symbol, closingSide, position.Quantity, trigger, orderID)
}

// StartFastWatcher launches the fast reconciliation loop. Cadence is jittered
// within [FastMin, FastMax] to avoid synchronizing with the broker's rate-limit
// windows.
func (r *StopLossReconciler) StartFastWatcher(ctx context.Context) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		log.Infof("fast watcher started (cadence %v-%v)", r.cfg.FastMin, r.cfg.FastMax)

		timer := time.NewTimer(utils.RandomDuration(r.cfg.FastMin, r.cfg.FastMax))
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("stopping fast watcher")
				return
			case <-timer.C:
				r.RunOnce(ctx)
				timer.Reset(utils.RandomDuration(r.cfg.FastMin, r.cfg.FastMax))
			}
		}
	}()
}

// StartTrailLoop launches the slow loop aligned to candle boundaries: it
// sleeps until the next interval boundary plus TrailOffset, runs a pass and
// repeats.
func (r *StopLossReconciler) StartTrailLoop(ctx context.Context) {
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		log.Infof("trail loop started (interval %v, offset %v)", r.cfg.Interval, r.cfg.TrailOffset)

		for {
			now := r.now()
			next := models.NextBoundaryAfter(now, r.cfg.Interval, r.cfg.TrailOffset)

			timer := time.NewTimer(next.Sub(now))

			select {
			case <-ctx.Done():
				timer.Stop()
				log.Info("stopping trail loop")
				return
			case <-timer.C:
				r.RunOnce(ctx)
			}
		}
	}()
}

// Snapshot implements router.SnapshotProvider.
func (r *StopLossReconciler) Snapshot() router.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return router.Snapshot{
		Positions: r.lastPositions,
		Orders:    r.lastOrders,
		LastPass:  r.lastPass,
	}
}
