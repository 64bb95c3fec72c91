package worker

import (
	"fmt"

	"github.com/anvesh2019/dhan-trading/src/models"
	"github.com/anvesh2019/dhan-trading/src/pubsub"
)

// Notifier is the outbound message sink. TelegramNotifier implements it.
type Notifier interface {
	Send(msg string)
}

// NotificationConsumer forwards bus events to the notification sink. It is
// deliberately one-way: a slow or failing sink never blocks trading.
type NotificationConsumer struct {
	notifier Notifier
}

func NewNotificationConsumer(notifier Notifier) *NotificationConsumer {
	return &NotificationConsumer{
		notifier: notifier,
	}
}

func (c *NotificationConsumer) onOrderFilled(event models.OrderFilledEvent) {
	c.notifier.Send(fmt.Sprintf("✅ %s %s filled: qty=%d avg=%.2f (order %s)", event.Side, event.Symbol, event.Quantity, event.FillPrice, event.OrderID))
}

func (c *NotificationConsumer) onStopPlaced(event models.StopPlacedEvent) {
	c.notifier.Send(fmt.Sprintf("🛡 stop placed for %s: %s qty=%d trigger=%.2f (order %s)", event.Symbol, event.Side, event.Quantity, event.TriggerPrice, event.OrderID))
}

func (c *NotificationConsumer) onOrphanCancelled(event models.OrphanCancelledEvent) {
	c.notifier.Send(fmt.Sprintf("🧹 cancelled orphan stop for %s (order %s)", event.Symbol, event.OrderID))
}

// Start subscribes the consumer to the bus topics it forwards.
func (c *NotificationConsumer) Start() error {
	if err := pubsub.Subscribe(pubsub.TopicOrderFilled, c.onOrderFilled); err != nil {
		return fmt.Errorf("NotificationConsumer:Start(): %w", err)
	}

	if err := pubsub.Subscribe(pubsub.TopicStopPlaced, c.onStopPlaced); err != nil {
		return fmt.Errorf("NotificationConsumer:Start(): %w", err)
	}

	if err := pubsub.Subscribe(pubsub.TopicOrphanCancelled, c.onOrphanCancelled); err != nil {
		return fmt.Errorf("NotificationConsumer:Start(): %w", err)
	}

	return nil
}
