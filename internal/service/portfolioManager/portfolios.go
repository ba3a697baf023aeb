package portfolioManager

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/portfolio"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/shopspring/decimal"
)

// Restore replaces the in-memory state with persisted data. A default
// portfolio is created when nothing was stored.
func (m *PortfolioManager) Restore(ctx context.Context, views []model.PortfolioView, watchlist []model.WatchlistItem) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.Restore"

	slog.Debug("Restore start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("portfolios", len(views)))

	return m.do(ctx, func() error {
		m.portfolios = make(map[string]*portfolio.Portfolio, len(views))
		m.order = m.order[:0]
		m.activeID = ""

		for _, v := range views {
			if _, dup := m.portfolios[v.ID]; dup || v.ID == "" {
				slog.Warn("skipping portfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("id", v.ID))
				continue
			}
			p := portfolio.Restore(v, m.opts.Clock)
			m.portfolios[p.ID] = p
			m.order = append(m.order, p.ID)
		}
		m.ensurePortfolio()
		m.watchlist = append([]model.WatchlistItem(nil), watchlist...)

		m.notify()
		slog.Debug("Restore finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int("portfolios", len(m.order)))
		return nil
	})
}

// CreatePortfolio adds a portfolio. A positive initialDeposit is recorded as
// its first deposit.
func (m *PortfolioManager) CreatePortfolio(ctx context.Context, name string, initialDeposit decimal.Decimal) (model.PortfolioView, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.CreatePortfolio"

	name = strings.TrimSpace(name)
	if name == "" {
		name = m.opts.DefaultName
	}
	if initialDeposit.IsNegative() {
		return model.PortfolioView{}, fmt.Errorf("%w: initial deposit %s", service.ErrInvalidAmount, initialDeposit)
	}

	var view model.PortfolioView
	err := m.do(ctx, func() error {
		p := m.newPortfolio(name)
		if initialDeposit.IsPositive() {
			p.Cash = initialDeposit
			p.Ledger.Record(m.newTx(p, model.TransactionDeposit, initialDeposit))
		}
		m.engine.Commit(p)
		m.committed(ctx)
		view = p.View()
		return nil
	})
	if err != nil {
		return model.PortfolioView{}, err
	}

	slog.Info("portfolio created", slog.String("rqID", rqID), slog.String("op", op), slog.String("id", view.ID), slog.String("name", view.Name))
	return view, nil
}

func (m *PortfolioManager) ListPortfolios(ctx context.Context) ([]model.PortfolioSummary, error) {
	var summaries []model.PortfolioSummary
	err := m.do(ctx, func() error {
		summaries = make([]model.PortfolioSummary, 0, len(m.order))
		for _, id := range m.order {
			p := m.portfolios[id]
			summaries = append(summaries, model.PortfolioSummary{
				ID:            p.ID,
				Name:          p.Name,
				CashBalance:   p.Cash,
				HoldingsCount: p.Holdings.Len(),
				Totals:        p.Totals,
			})
		}
		return nil
	})
	return summaries, err
}

// GetPortfolio returns a copy of the portfolio. An empty id selects the
// active one.
func (m *PortfolioManager) GetPortfolio(ctx context.Context, id string) (model.PortfolioView, error) {
	var view model.PortfolioView
	err := m.do(ctx, func() error {
		p, err := m.portfolio(id)
		if err != nil {
			return err
		}
		view = p.View()
		return nil
	})
	return view, err
}

func (m *PortfolioManager) ActiveID(ctx context.Context) (string, error) {
	var id string
	err := m.do(ctx, func() error {
		id = m.activeID
		return nil
	})
	return id, err
}

func (m *PortfolioManager) SwitchPortfolio(ctx context.Context, id string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.SwitchPortfolio"

	err := m.do(ctx, func() error {
		if _, ok := m.portfolios[id]; !ok {
			return fmt.Errorf("%w: %q", service.ErrPortfolioNotFound, id)
		}
		if m.activeID == id {
			return nil
		}
		m.activeID = id
		m.notify()
		return nil
	})
	if err != nil {
		slog.Error("SwitchPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SwitchPortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("active", id))
	return nil
}

// DeletePortfolio removes a portfolio. When the active one is removed the
// first remaining portfolio becomes active; deleting the last one leaves a
// fresh default in its place.
func (m *PortfolioManager) DeletePortfolio(ctx context.Context, id string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.DeletePortfolio"

	err := m.do(ctx, func() error {
		if _, ok := m.portfolios[id]; !ok {
			return fmt.Errorf("%w: %q", service.ErrPortfolioNotFound, id)
		}
		delete(m.portfolios, id)
		for i, existing := range m.order {
			if existing == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
		m.ensurePortfolio()
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("DeletePortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Info("portfolio deleted", slog.String("rqID", rqID), slog.String("op", op), slog.String("id", id))
	return nil
}

// ResetPortfolio clears cash, holdings, ledger and history of a portfolio.
func (m *PortfolioManager) ResetPortfolio(ctx context.Context, id string) (model.PortfolioView, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.ResetPortfolio"

	var view model.PortfolioView
	err := m.do(ctx, func() error {
		p, err := m.portfolio(id)
		if err != nil {
			return err
		}
		p.Reset()
		m.committed(ctx)
		view = p.View()
		return nil
	})
	if err != nil {
		slog.Error("ResetPortfolio failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioView{}, err
	}

	slog.Info("portfolio reset", slog.String("rqID", rqID), slog.String("op", op), slog.String("id", view.ID))
	return view, nil
}
