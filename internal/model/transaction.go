package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionBuy        TransactionKind = "buy"
	TransactionSell       TransactionKind = "sell"
	TransactionDeposit    TransactionKind = "deposit"
	TransactionWithdrawal TransactionKind = "withdrawal"
)

func (k TransactionKind) Valid() bool {
	switch k {
	case TransactionBuy, TransactionSell, TransactionDeposit, TransactionWithdrawal:
		return true
	}
	return false
}

// Transaction is immutable once recorded. Asset fields are empty for cash movements.
type Transaction struct {
	ID          string
	Seq         uint64
	PortfolioID string
	Kind        TransactionKind
	AssetClass  AssetClass
	Symbol      string
	Name        string
	Quantity    decimal.Decimal
	Price       decimal.Decimal
	TotalAmount decimal.Decimal
	Timestamp   time.Time
}

func (t Transaction) IsTrade() bool {
	return t.Kind == TransactionBuy || t.Kind == TransactionSell
}

func (t Transaction) Key() AssetKey {
	return AssetKey{Class: t.AssetClass, Symbol: t.Symbol}
}

// Before reports ledger order: timestamp first, sequence number on ties.
func (t Transaction) Before(other Transaction) bool {
	if !t.Timestamp.Equal(other.Timestamp) {
		return t.Timestamp.Before(other.Timestamp)
	}
	return t.Seq < other.Seq
}
