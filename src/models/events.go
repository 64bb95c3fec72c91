package models

// Events published on the process-local bus. All three are forwarded to the
// notification sink; they also feed logs and metrics.

type StopPlacedEvent struct {
	Symbol       string
	Side         TransactionType
	Quantity     int
	TriggerPrice float64
	OrderID      string
}

type OrphanCancelledEvent struct {
	Symbol  string
	OrderID string
}

type OrderFilledEvent struct {
	Symbol    string
	Side      TransactionType
	Quantity  int
	FillPrice float64
	Status    OrderStatus
	OrderID   string
}
