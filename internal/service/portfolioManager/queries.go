package portfolioManager

import (
	"context"

	"github.com/KotFed0t/invest_tracker/internal/ledger"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/performanceAnalyzer"
)

// Stats runs the performance analyzer over the portfolio's current state.
func (m *PortfolioManager) Stats(ctx context.Context, portfolioID string) (model.PerformanceStats, error) {
	var stats model.PerformanceStats
	err := m.do(ctx, func() error {
		p, err := m.portfolio(portfolioID)
		if err != nil {
			return err
		}
		stats = performanceAnalyzer.Analyze(performanceAnalyzer.Input{
			Cash:         p.Cash,
			Totals:       p.Totals,
			Holdings:     p.Holdings.List(),
			Ledger:       p.Ledger,
			Now:          p.Now(),
			RiskFreeRate: *m.opts.RiskFreeRate,
		})
		return nil
	})
	return stats, err
}

func (m *PortfolioManager) Transactions(ctx context.Context, portfolioID string, filter ledger.Filter) ([]model.Transaction, error) {
	var txs []model.Transaction
	err := m.do(ctx, func() error {
		p, err := m.portfolio(portfolioID)
		if err != nil {
			return err
		}
		txs = p.Ledger.Filter(filter)
		return nil
	})
	return txs, err
}
