package models

import (
	"strings"
	"time"
)

type OrderType string

const (
	OrderTypeStopLoss       OrderType = "SL"
	OrderTypeStopLossMarket OrderType = "SL-M"
	OrderTypeMarket         OrderType = "MARKET"
	OrderTypeLimit          OrderType = "LIMIT"
)

// IsStopKind reports whether the order type is one of the broker's stop-loss
// spellings. The order list occasionally reports "SLM" for SL-M orders.
func (t OrderType) IsStopKind() bool {
	switch strings.ToUpper(string(t)) {
	case "SL", "SL-M", "SLM":
		return true
	}

	return false
}

const ProductTypeIntraday = "INTRADAY"

// SuperOrderCorrelationPrefix tags correlation ids of orders placed through the
// super-order endpoint, so the order list reveals which entries already carry a
// broker-managed stop.
const SuperOrderCorrelationPrefix = "super-"

// DhanOrderDTO mirrors a single entry of the broker's order list response.
type DhanOrderDTO struct {
	OrderID         string  `json:"orderId"`
	CorrelationID   string  `json:"correlationId"`
	TradingSymbol   string  `json:"tradingSymbol"`
	SecurityID      string  `json:"securityId"`
	ExchangeSegment string  `json:"exchangeSegment"`
	TransactionType string  `json:"transactionType"`
	OrderType       string  `json:"orderType"`
	ProductType     string  `json:"productType"`
	OrderStatus     string  `json:"orderStatus"`
	Quantity        int     `json:"quantity"`
	FilledQuantity  int     `json:"filledQty"`
	Price           float64 `json:"price"`
	TriggerPrice    float64 `json:"triggerPrice"`
	AvgFillPrice    float64 `json:"averageTradedPrice"`
	CreateTime      string  `json:"createTime"`
	UpdateTime      string  `json:"updateTime"`
}

type Order struct {
	OrderID         string
	CorrelationID   string
	Symbol          string
	SecurityID      string
	ExchangeSegment string
	Side            TransactionType
	Type            OrderType
	Product         string
	Status          OrderStatus
	Quantity        int
	FilledQuantity  int
	Price           float64
	TriggerPrice    float64
	AvgFillPrice    float64
	UpdatedAt       time.Time
}

// IsSuperTagged reports whether the order was placed through the super-order
// endpoint by this bot.
func (o *Order) IsSuperTagged() bool {
	return strings.HasPrefix(o.CorrelationID, SuperOrderCorrelationPrefix)
}

// dhanOrderTimeLayout is the broker's local wall-clock timestamp format, e.g.
// "2024-03-01 10:05:31".
const dhanOrderTimeLayout = "2006-01-02 15:04:05"

func (dto *DhanOrderDTO) ToOrder(loc *time.Location) *Order {
	updatedAt, err := time.ParseInLocation(dhanOrderTimeLayout, dto.UpdateTime, loc)
	if err != nil {
		// A missing or malformed timestamp only demotes the order in the
		// ranked candidate matcher; it never drops the order.
		updatedAt = time.Time{}
	}

	return &Order{
		OrderID:         dto.OrderID,
		CorrelationID:   dto.CorrelationID,
		Symbol:          strings.ToUpper(strings.TrimSpace(dto.TradingSymbol)),
		SecurityID:      dto.SecurityID,
		ExchangeSegment: dto.ExchangeSegment,
		Side:            NewTransactionType(dto.TransactionType),
		Type:            OrderType(strings.ToUpper(dto.OrderType)),
		Product:         strings.ToUpper(dto.ProductType),
		Status:          NewOrderStatus(dto.OrderStatus),
		Quantity:        dto.Quantity,
		FilledQuantity:  dto.FilledQuantity,
		Price:           dto.Price,
		TriggerPrice:    dto.TriggerPrice,
		AvgFillPrice:    dto.AvgFillPrice,
		UpdatedAt:       updatedAt,
	}
}
