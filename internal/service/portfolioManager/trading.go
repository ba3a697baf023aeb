package portfolioManager

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/portfolio"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/shopspring/decimal"
)

func (m *PortfolioManager) newTx(p *portfolio.Portfolio, kind model.TransactionKind, total decimal.Decimal) model.Transaction {
	return model.Transaction{
		ID:          m.opts.NewID(),
		Seq:         p.NextSeq(),
		PortfolioID: p.ID,
		Kind:        kind,
		TotalAmount: total,
		Timestamp:   p.Now(),
	}
}

func validateAsset(class model.AssetClass, symbol string) (model.AssetKey, error) {
	key := model.NewAssetKey(class, symbol)
	if !key.Class.Valid() {
		return model.AssetKey{}, fmt.Errorf("%w: asset class %q", service.ErrInvalidAsset, class)
	}
	if key.Symbol == "" {
		return model.AssetKey{}, fmt.Errorf("%w: %w: empty symbol", service.ErrInvalidAmount, service.ErrInvalidAsset)
	}
	return key, nil
}

func (m *PortfolioManager) Deposit(ctx context.Context, portfolioID string, amount decimal.Decimal) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.Deposit"

	slog.Debug("Deposit start", slog.String("rqID", rqID), slog.String("op", op), slog.String("amount", amount.String()))

	if !amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: deposit %s", service.ErrInvalidAmount, amount)
	}

	var tx model.Transaction
	err := m.do(ctx, func() error {
		p, err := m.portfolio(portfolioID)
		if err != nil {
			return err
		}
		p.Cash = p.Cash.Add(amount)
		tx = m.newTx(p, model.TransactionDeposit, amount)
		p.Ledger.Record(tx)
		m.engine.Revalue(ctx, p)
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("Deposit failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	slog.Debug("Deposit finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("txID", tx.ID))
	return tx, nil
}

func (m *PortfolioManager) Withdraw(ctx context.Context, portfolioID string, amount decimal.Decimal) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.Withdraw"

	slog.Debug("Withdraw start", slog.String("rqID", rqID), slog.String("op", op), slog.String("amount", amount.String()))

	if !amount.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: withdrawal %s", service.ErrInvalidAmount, amount)
	}

	var tx model.Transaction
	err := m.do(ctx, func() error {
		p, err := m.portfolio(portfolioID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(p.Cash) {
			return fmt.Errorf("%w: withdrawal %s, cash %s", service.ErrInsufficientFunds, amount, p.Cash)
		}
		p.Cash = p.Cash.Sub(amount)
		tx = m.newTx(p, model.TransactionWithdrawal, amount)
		p.Ledger.Record(tx)
		m.engine.Revalue(ctx, p)
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("Withdraw failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	slog.Debug("Withdraw finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("txID", tx.ID))
	return tx, nil
}

// Buy spends quantity*price of cash on an asset. name defaults to the symbol.
func (m *PortfolioManager) Buy(
	ctx context.Context,
	portfolioID string,
	class model.AssetClass,
	symbol, name string,
	quantity, price decimal.Decimal,
) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.Buy"

	slog.Debug(
		"Buy start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("symbol", symbol),
		slog.String("quantity", quantity.String()),
		slog.String("price", price.String()),
	)

	key, err := validateAsset(class, symbol)
	if err != nil {
		return model.Transaction{}, err
	}
	if !quantity.IsPositive() || !price.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: quantity %s, price %s", service.ErrInvalidAmount, quantity, price)
	}
	if name == "" {
		name = key.Symbol
	}

	var tx model.Transaction
	err = m.do(ctx, func() error {
		p, err := m.portfolio(portfolioID)
		if err != nil {
			return err
		}
		cost := quantity.Mul(price)
		if cost.GreaterThan(p.Cash) {
			return fmt.Errorf("%w: cost %s, cash %s", service.ErrInsufficientFunds, cost, p.Cash)
		}

		p.Cash = p.Cash.Sub(cost)
		p.Holdings.ApplyBuy(key.Class, key.Symbol, name, quantity, price)

		tx = m.newTx(p, model.TransactionBuy, cost)
		tx.AssetClass = key.Class
		tx.Symbol = key.Symbol
		tx.Name = name
		tx.Quantity = quantity
		tx.Price = price
		p.Ledger.Record(tx)

		m.engine.Revalue(ctx, p)
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("Buy failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	slog.Info("bought", slog.String("rqID", rqID), slog.String("op", op), slog.String("asset", key.String()), slog.String("total", tx.TotalAmount.String()))
	return tx, nil
}

// Sell converts quantity of a holding back into cash at price.
func (m *PortfolioManager) Sell(
	ctx context.Context,
	portfolioID string,
	class model.AssetClass,
	symbol string,
	quantity, price decimal.Decimal,
) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioManager.Sell"

	slog.Debug(
		"Sell start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.String("symbol", symbol),
		slog.String("quantity", quantity.String()),
		slog.String("price", price.String()),
	)

	key, err := validateAsset(class, symbol)
	if err != nil {
		return model.Transaction{}, err
	}
	if !quantity.IsPositive() || !price.IsPositive() {
		return model.Transaction{}, fmt.Errorf("%w: quantity %s, price %s", service.ErrInvalidAmount, quantity, price)
	}

	var tx model.Transaction
	err = m.do(ctx, func() error {
		p, err := m.portfolio(portfolioID)
		if err != nil {
			return err
		}
		name := key.Symbol
		if h, ok := p.Holdings.Get(key); ok {
			name = h.Name
		}
		if err := p.Holdings.ApplySell(key.Class, key.Symbol, quantity, price); err != nil {
			return err
		}

		proceeds := quantity.Mul(price)
		p.Cash = p.Cash.Add(proceeds)

		tx = m.newTx(p, model.TransactionSell, proceeds)
		tx.AssetClass = key.Class
		tx.Symbol = key.Symbol
		tx.Name = name
		tx.Quantity = quantity
		tx.Price = price
		p.Ledger.Record(tx)

		m.engine.Revalue(ctx, p)
		m.committed(ctx)
		return nil
	})
	if err != nil {
		slog.Error("Sell failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	slog.Info("sold", slog.String("rqID", rqID), slog.String("op", op), slog.String("asset", key.String()), slog.String("total", tx.TotalAmount.String()))
	return tx, nil
}
