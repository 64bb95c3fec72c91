package models

import "strings"

// DhanPositionDTO mirrors a single entry of the broker's positions response.
type DhanPositionDTO struct {
	TradingSymbol   string `json:"tradingSymbol"`
	SecurityID      string `json:"securityId"`
	ExchangeSegment string `json:"exchangeSegment"`
	PositionType    string `json:"positionType"`
	ProductType     string `json:"productType"`
	NetQty          int    `json:"netQty"`
}

type Position struct {
	Symbol     string
	SecurityID string
	Direction  PositionDirection
	Quantity   int
}

// ToPosition converts the DTO into a domain position. Quantity is always the
// absolute net quantity; direction carries the sign.
func (dto *DhanPositionDTO) ToPosition() *Position {
	qty := dto.NetQty
	if qty < 0 {
		qty = -qty
	}

	return &Position{
		Symbol:     strings.ToUpper(strings.TrimSpace(dto.TradingSymbol)),
		SecurityID: dto.SecurityID,
		Direction:  NewPositionDirection(dto.PositionType),
		Quantity:   qty,
	}
}

// IsOpenIntraday reports whether the DTO describes an intraday position that is
// still open. Closed positions are excluded at this boundary so downstream code
// never sees them.
func (dto *DhanPositionDTO) IsOpenIntraday() bool {
	if strings.ToUpper(dto.ProductType) != ProductTypeIntraday {
		return false
	}

	return NewPositionDirection(dto.PositionType) != PositionDirectionClosed && dto.NetQty != 0
}
