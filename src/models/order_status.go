package models

import "strings"

// OrderStatus is the canonical, normalized status vocabulary used everywhere in
// this codebase. The broker reports several spellings for the same lifecycle
// state; we normalize once at the DTO boundary and compare against exactly one
// set per question (actionable, filled, terminal).
type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "PENDING"
	OrderStatusOpen              OrderStatus = "OPEN"
	OrderStatusTriggerPending    OrderStatus = "TRIGGER PENDING"
	OrderStatusValidationPending OrderStatus = "VALIDATION PENDING"
	OrderStatusRequestReceived   OrderStatus = "PUT ORDER REQ RECEIVED"
	OrderStatusPartiallyFilled   OrderStatus = "PARTIALLY_FILLED"
	OrderStatusTraded            OrderStatus = "TRADED"
	OrderStatusExecuted          OrderStatus = "EXECUTED"
	OrderStatusFilled            OrderStatus = "FILLED"
	OrderStatusComplete          OrderStatus = "COMPLETE"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
	OrderStatusRejected          OrderStatus = "REJECTED"
	OrderStatusExpired           OrderStatus = "EXPIRED"
	OrderStatusClosed            OrderStatus = "CLOSED"
)

// statusAliases maps alternate spellings seen in broker responses onto the
// canonical constants. The order list and the placement response disagree on
// several of these.
var statusAliases = map[OrderStatus]OrderStatus{
	"PUT ORDER REQUEST RECEIVED": OrderStatusRequestReceived,
	"COMPLETED":                  OrderStatusComplete,
	"TRADE":                      OrderStatusTraded,
}

func NewOrderStatus(s string) OrderStatus {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	if canonical, ok := statusAliases[status]; ok {
		return canonical
	}

	return status
}

var actionableStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:           {},
	OrderStatusOpen:              {},
	OrderStatusTriggerPending:    {},
	OrderStatusValidationPending: {},
	OrderStatusRequestReceived:   {},
}

var filledStatuses = map[OrderStatus]struct{}{
	OrderStatusTraded:          {},
	OrderStatusExecuted:        {},
	OrderStatusFilled:          {},
	OrderStatusComplete:        {},
	OrderStatusPartiallyFilled: {},
}

var terminalStatuses = map[OrderStatus]struct{}{
	OrderStatusTraded:    {},
	OrderStatusExecuted:  {},
	OrderStatusFilled:    {},
	OrderStatusComplete:  {},
	OrderStatusCancelled: {},
	OrderStatusRejected:  {},
	OrderStatusExpired:   {},
	OrderStatusClosed:    {},
}

// IsActionable reports whether the order is resting or pending at the broker,
// i.e. it can still be cancelled.
func (s OrderStatus) IsActionable() bool {
	_, ok := actionableStatuses[s]
	return ok
}

// IsFilled reports whether the broker has executed at least part of the order.
func (s OrderStatus) IsFilled() bool {
	_, ok := filledStatuses[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}
