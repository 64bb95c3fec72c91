package models

import "strings"

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

func NewTransactionType(s string) TransactionType {
	return TransactionType(strings.ToUpper(strings.TrimSpace(s)))
}

// Opposite returns the side that closes a fill on this side.
func (t TransactionType) Opposite() TransactionType {
	if t == TransactionTypeBuy {
		return TransactionTypeSell
	}

	return TransactionTypeBuy
}

type PositionDirection string

const (
	PositionDirectionLong   PositionDirection = "LONG"
	PositionDirectionShort  PositionDirection = "SHORT"
	PositionDirectionClosed PositionDirection = "CLOSED"
)

func NewPositionDirection(s string) PositionDirection {
	return PositionDirection(strings.ToUpper(strings.TrimSpace(s)))
}

// ClosingSide returns the transaction type of a protective stop for the
// position: a long is closed by a SELL, a short by a BUY.
func (d PositionDirection) ClosingSide() TransactionType {
	if d == PositionDirectionShort {
		return TransactionTypeBuy
	}

	return TransactionTypeSell
}
