package dbConverter

import (
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/model/dbModel"
	"github.com/shopspring/decimal"
)

func ConvertPortfolio(p dbModel.Portfolio) model.PortfolioView {
	holdings := make([]model.Holding, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, ConvertHolding(h))
	}

	txs := make([]model.Transaction, 0, len(p.Transactions))
	for _, tx := range p.Transactions {
		txs = append(txs, ConvertTransaction(tx, p.ID))
	}

	snapshots := make([]model.Snapshot, 0, len(p.Snapshots))
	for _, s := range p.Snapshots {
		snapshots = append(snapshots, model.Snapshot(s))
	}

	return model.PortfolioView{
		ID:           p.ID,
		Name:         p.Name,
		CashBalance:  p.CashBalance,
		Holdings:     holdings,
		Transactions: txs,
		Snapshots:    snapshots,
		CreatedAt:    p.CreatedAt,
		LastUpdated:  p.LastUpdated,
		Totals: model.Totals{
			TotalValue:    p.TotalValue,
			TotalInvested: p.TotalInvested,
			TotalROI:      p.TotalROI,
		},
	}
}

func ConvertHolding(h dbModel.Holding) model.Holding {
	return model.Holding{
		AssetClass:  model.AssetClass(h.AssetClass),
		Symbol:      h.Symbol,
		Name:        h.Name,
		Quantity:    h.Quantity,
		AverageCost: h.AverageCost,
		LastPrice:   h.LastPrice,
		LastUpdated: h.LastUpdated,
	}
}

func ConvertTransaction(tx dbModel.Transaction, portfolioID string) model.Transaction {
	res := model.Transaction{
		ID:          tx.ID,
		Seq:         tx.Seq,
		PortfolioID: portfolioID,
		Kind:        model.TransactionKind(tx.Kind),
		AssetClass:  model.AssetClass(tx.AssetClass),
		Symbol:      tx.Symbol,
		Name:        tx.Name,
		TotalAmount: tx.TotalAmount,
		Timestamp:   tx.Timestamp,
	}
	if tx.Quantity != nil {
		res.Quantity = *tx.Quantity
	}
	if tx.Price != nil {
		res.Price = *tx.Price
	}
	return res
}

func ConvertWatchlistItem(w dbModel.WatchlistItem) model.WatchlistItem {
	return model.WatchlistItem{
		AssetClass:    model.AssetClass(w.AssetClass),
		Symbol:        w.Symbol,
		Name:          w.Name,
		Price:         w.Price,
		Change:        w.Change,
		ChangePercent: w.ChangePercent,
		AddedAt:       w.AddedAt,
		LastUpdated:   w.LastUpdated,
	}
}

func ToDbPortfolio(v model.PortfolioView) dbModel.Portfolio {
	holdings := make([]dbModel.Holding, 0, len(v.Holdings))
	for _, h := range v.Holdings {
		holdings = append(holdings, dbModel.Holding{
			AssetClass:  string(h.AssetClass),
			Symbol:      h.Symbol,
			Name:        h.Name,
			Quantity:    h.Quantity,
			AverageCost: h.AverageCost,
			LastPrice:   h.LastPrice,
			LastUpdated: h.LastUpdated,
		})
	}

	txs := make([]dbModel.Transaction, 0, len(v.Transactions))
	for _, tx := range v.Transactions {
		txs = append(txs, ToDbTransaction(tx))
	}

	snapshots := make([]dbModel.Snapshot, 0, len(v.Snapshots))
	for _, s := range v.Snapshots {
		snapshots = append(snapshots, dbModel.Snapshot(s))
	}

	return dbModel.Portfolio{
		ID:            v.ID,
		Name:          v.Name,
		CashBalance:   v.CashBalance,
		Holdings:      holdings,
		Transactions:  txs,
		Snapshots:     snapshots,
		CreatedAt:     v.CreatedAt,
		LastUpdated:   v.LastUpdated,
		TotalValue:    v.TotalValue,
		TotalInvested: v.TotalInvested,
		TotalROI:      v.TotalROI,
	}
}

// ToDbTransaction omits asset fields for cash movements.
func ToDbTransaction(tx model.Transaction) dbModel.Transaction {
	res := dbModel.Transaction{
		ID:          tx.ID,
		Seq:         tx.Seq,
		Kind:        string(tx.Kind),
		TotalAmount: tx.TotalAmount,
		Timestamp:   tx.Timestamp,
	}
	if tx.IsTrade() {
		res.AssetClass = string(tx.AssetClass)
		res.Symbol = tx.Symbol
		res.Name = tx.Name
		res.Quantity = decimalPtr(tx.Quantity)
		res.Price = decimalPtr(tx.Price)
	}
	return res
}

func ToDbWatchlistItem(w model.WatchlistItem) dbModel.WatchlistItem {
	return dbModel.WatchlistItem{
		AssetClass:    string(w.AssetClass),
		Symbol:        w.Symbol,
		Name:          w.Name,
		Price:         w.Price,
		Change:        w.Change,
		ChangePercent: w.ChangePercent,
		AddedAt:       w.AddedAt,
		LastUpdated:   w.LastUpdated,
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
