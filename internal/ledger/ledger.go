package ledger

import (
	"sort"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ledger is the append-only transaction log of one portfolio, kept in
// (timestamp, seq) order.
type Ledger struct {
	txs []model.Transaction
}

func New(txs ...model.Transaction) *Ledger {
	l := &Ledger{txs: make([]model.Transaction, len(txs))}
	copy(l.txs, txs)
	sort.SliceStable(l.txs, func(i, j int) bool {
		return l.txs[i].Before(l.txs[j])
	})
	return l
}

// Record appends tx. A transaction stamped earlier than the tail is inserted
// at its ordered position.
func (l *Ledger) Record(tx model.Transaction) {
	n := len(l.txs)
	if n == 0 || l.txs[n-1].Before(tx) {
		l.txs = append(l.txs, tx)
		return
	}

	i := sort.Search(n, func(i int) bool {
		return tx.Before(l.txs[i])
	})
	l.txs = append(l.txs, model.Transaction{})
	copy(l.txs[i+1:], l.txs[i:])
	l.txs[i] = tx
}

func (l *Ledger) Len() int {
	return len(l.txs)
}

func (l *Ledger) All() []model.Transaction {
	res := make([]model.Transaction, len(l.txs))
	copy(res, l.txs)
	return res
}

// Filter narrows ledger queries. Zero values match everything; From is
// inclusive, To is exclusive.
type Filter struct {
	Kinds      []model.TransactionKind
	AssetClass model.AssetClass
	Symbol     string
	From       time.Time
	To         time.Time
}

func (f Filter) match(tx model.Transaction) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if tx.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.AssetClass != "" && tx.AssetClass != f.AssetClass {
		return false
	}
	if f.Symbol != "" && tx.Symbol != f.Symbol {
		return false
	}
	if !f.From.IsZero() && tx.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !tx.Timestamp.Before(f.To) {
		return false
	}
	return true
}

func (l *Ledger) Filter(f Filter) []model.Transaction {
	res := make([]model.Transaction, 0)
	for _, tx := range l.txs {
		if f.match(tx) {
			res = append(res, tx)
		}
	}
	return res
}

// LastBuyBefore finds the most recent buy of the same asset that precedes tx
// in ledger order.
func (l *Ledger) LastBuyBefore(tx model.Transaction) (model.Transaction, bool) {
	for i := len(l.txs) - 1; i >= 0; i-- {
		candidate := l.txs[i]
		if !candidate.Before(tx) {
			continue
		}
		if candidate.Kind == model.TransactionBuy && candidate.Key() == tx.Key() {
			return candidate, true
		}
	}
	return model.Transaction{}, false
}

// IsWinningSell classifies a sell against the last prior buy price of the
// same asset, not against matched lots.
func (l *Ledger) IsWinningSell(tx model.Transaction) bool {
	if tx.Kind != model.TransactionSell {
		return false
	}
	buy, ok := l.LastBuyBefore(tx)
	if !ok {
		return false
	}
	return tx.Price.GreaterThan(buy.Price)
}

type TradeCounts struct {
	Total   int
	Winning int
	Losing  int
}

// TradeCounts counts buys and sells as trades. Only sells can win; every
// other trade, buys included, counts as losing.
func (l *Ledger) TradeCounts() TradeCounts {
	var res TradeCounts
	for _, tx := range l.txs {
		switch tx.Kind {
		case model.TransactionBuy:
			res.Total++
		case model.TransactionSell:
			res.Total++
			if l.IsWinningSell(tx) {
				res.Winning++
			}
		}
	}
	res.Losing = res.Total - res.Winning
	return res
}

// PeriodROI compares sell proceeds with buy spending inside [from, to).
// ok is false when the period holds no buys.
func (l *Ledger) PeriodROI(from, to time.Time) (roi decimal.Decimal, ok bool) {
	bought := decimal.Zero
	sold := decimal.Zero
	trades := l.Filter(Filter{
		Kinds: []model.TransactionKind{model.TransactionBuy, model.TransactionSell},
		From:  from,
		To:    to,
	})
	for _, tx := range trades {
		if tx.Kind == model.TransactionBuy {
			bought = bought.Add(tx.TotalAmount)
		} else {
			sold = sold.Add(tx.TotalAmount)
		}
	}

	if !bought.IsPositive() {
		return decimal.Zero, false
	}

	return sold.Sub(bought).Div(bought).Mul(hundred), true
}
