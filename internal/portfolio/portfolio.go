package portfolio

import (
	"time"

	"github.com/KotFed0t/invest_tracker/internal/holdingStore"
	"github.com/KotFed0t/invest_tracker/internal/ledger"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/shopspring/decimal"
)

// Portfolio is the mutable aggregate owned by the portfolio manager: cash,
// open positions, the transaction log and the valuation history.
type Portfolio struct {
	ID          string
	Name        string
	Cash        decimal.Decimal
	Holdings    *holdingStore.HoldingStore
	Ledger      *ledger.Ledger
	Snapshots   []model.Snapshot
	CreatedAt   time.Time
	LastUpdated time.Time
	Totals      model.Totals

	seq   uint64
	clock func() time.Time
}

// New creates an empty portfolio with a single zero-value snapshot.
func New(id, name string, clock func() time.Time) *Portfolio {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	p := &Portfolio{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		clock:     clock,
	}
	p.clear(now)
	return p
}

// Restore rebuilds a portfolio from a persisted view. The sequence counter
// continues after the highest recorded transaction.
func Restore(v model.PortfolioView, clock func() time.Time) *Portfolio {
	if clock == nil {
		clock = time.Now
	}
	p := &Portfolio{
		ID:          v.ID,
		Name:        v.Name,
		Cash:        v.CashBalance,
		Holdings:    holdingStore.Restore(clock, v.Holdings),
		Ledger:      ledger.New(v.Transactions...),
		Snapshots:   append([]model.Snapshot(nil), v.Snapshots...),
		CreatedAt:   v.CreatedAt,
		LastUpdated: v.LastUpdated,
		Totals:      v.Totals,
		clock:       clock,
	}
	for _, tx := range v.Transactions {
		if tx.Seq > p.seq {
			p.seq = tx.Seq
		}
	}
	if len(p.Snapshots) == 0 {
		p.Snapshots = []model.Snapshot{{Timestamp: p.CreatedAt}}
	}
	return p
}

// Reset drops cash, holdings, transactions and history but keeps the identity.
func (p *Portfolio) Reset() {
	p.clear(p.clock())
}

func (p *Portfolio) clear(now time.Time) {
	p.Cash = decimal.Zero
	p.Holdings = holdingStore.New(p.clock)
	p.Ledger = ledger.New()
	p.Snapshots = []model.Snapshot{{
		Timestamp:     now,
		TotalValue:    decimal.Zero,
		TotalInvested: decimal.Zero,
		TotalROI:      decimal.Zero,
	}}
	p.Totals = model.Totals{}
	p.LastUpdated = now
	p.seq = 0
}

func (p *Portfolio) Now() time.Time {
	return p.clock()
}

func (p *Portfolio) NextSeq() uint64 {
	p.seq++
	return p.seq
}

// AppendSnapshot records a valuation point. When limit is positive only the
// most recent limit snapshots are retained.
func (p *Portfolio) AppendSnapshot(s model.Snapshot, limit int) {
	p.Snapshots = append(p.Snapshots, s)
	if limit > 0 && len(p.Snapshots) > limit {
		trimmed := make([]model.Snapshot, limit)
		copy(trimmed, p.Snapshots[len(p.Snapshots)-limit:])
		p.Snapshots = trimmed
	}
}

// View returns a deep copy safe to hand out of the owning goroutine.
func (p *Portfolio) View() model.PortfolioView {
	return model.PortfolioView{
		ID:           p.ID,
		Name:         p.Name,
		CashBalance:  p.Cash,
		Holdings:     p.Holdings.List(),
		Transactions: p.Ledger.All(),
		Snapshots:    append([]model.Snapshot(nil), p.Snapshots...),
		CreatedAt:    p.CreatedAt,
		LastUpdated:  p.LastUpdated,
		Totals:       p.Totals,
	}
}
