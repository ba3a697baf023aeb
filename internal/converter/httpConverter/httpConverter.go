package httpConverter

import (
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/model/httpModel"
)

func Totals(t model.Totals) httpModel.Totals {
	return httpModel.Totals{
		TotalValue:    t.TotalValue,
		TotalInvested: t.TotalInvested,
		TotalROI:      t.TotalROI,
	}
}

func PortfolioSummaries(summaries []model.PortfolioSummary, activeID string) []httpModel.PortfolioSummary {
	res := make([]httpModel.PortfolioSummary, 0, len(summaries))
	for _, s := range summaries {
		res = append(res, httpModel.PortfolioSummary{
			ID:            s.ID,
			Name:          s.Name,
			Active:        s.ID == activeID,
			CashBalance:   s.CashBalance,
			HoldingsCount: s.HoldingsCount,
			Totals:        Totals(s.Totals),
		})
	}
	return res
}

func Portfolio(v model.PortfolioView) httpModel.Portfolio {
	holdings := make([]httpModel.Holding, 0, len(v.Holdings))
	for _, h := range v.Holdings {
		holdings = append(holdings, Holding(h))
	}

	snapshots := make([]httpModel.Snapshot, 0, len(v.Snapshots))
	for _, s := range v.Snapshots {
		snapshots = append(snapshots, httpModel.Snapshot{
			Timestamp: s.Timestamp,
			Totals: httpModel.Totals{
				TotalValue:    s.TotalValue,
				TotalInvested: s.TotalInvested,
				TotalROI:      s.TotalROI,
			},
		})
	}

	return httpModel.Portfolio{
		ID:          v.ID,
		Name:        v.Name,
		CashBalance: v.CashBalance,
		Holdings:    holdings,
		Snapshots:   snapshots,
		CreatedAt:   v.CreatedAt,
		LastUpdated: v.LastUpdated,
		Totals:      Totals(v.Totals),
	}
}

func Holding(h model.Holding) httpModel.Holding {
	return httpModel.Holding{
		AssetClass:          string(h.AssetClass),
		Symbol:              h.Symbol,
		Name:                h.Name,
		Quantity:            h.Quantity,
		AverageCost:         h.AverageCost,
		LastPrice:           h.LastPrice,
		CurrentValue:        h.CurrentValue(),
		UnrealizedPL:        h.UnrealizedPL(),
		UnrealizedPLPercent: h.UnrealizedPLPercent(),
		LastUpdated:         h.LastUpdated,
	}
}

func Transaction(tx model.Transaction) httpModel.Transaction {
	res := httpModel.Transaction{
		ID:          tx.ID,
		Seq:         tx.Seq,
		Kind:        string(tx.Kind),
		TotalAmount: tx.TotalAmount,
		Timestamp:   tx.Timestamp,
	}
	if tx.IsTrade() {
		quantity, price := tx.Quantity, tx.Price
		res.AssetClass = string(tx.AssetClass)
		res.Symbol = tx.Symbol
		res.Name = tx.Name
		res.Quantity = &quantity
		res.Price = &price
	}
	return res
}

func Transactions(txs []model.Transaction) []httpModel.Transaction {
	res := make([]httpModel.Transaction, 0, len(txs))
	for _, tx := range txs {
		res = append(res, Transaction(tx))
	}
	return res
}

func Stats(s model.PerformanceStats) httpModel.Stats {
	return httpModel.Stats{
		TotalTrades:          s.TotalTrades,
		WinningTrades:        s.WinningTrades,
		LosingTrades:         s.LosingTrades,
		WinRate:              s.WinRate,
		MaxDrawdown:          s.MaxDrawdown,
		VolatilityRatio:      s.VolatilityRatio,
		YTDReturn:            s.YTDReturn,
		TotalROI:             s.TotalROI,
		CashPercentage:       s.CashPercentage,
		BestPerformingAsset:  s.BestPerformingAsset,
		WorstPerformingAsset: s.WorstPerformingAsset,
		TopHolding:           s.TopHolding,
	}
}

func WatchlistItem(item model.WatchlistItem) httpModel.WatchlistItem {
	return httpModel.WatchlistItem{
		AssetClass:    string(item.AssetClass),
		Symbol:        item.Symbol,
		Name:          item.Name,
		Price:         item.Price,
		Change:        item.Change,
		ChangePercent: item.ChangePercent,
		AddedAt:       item.AddedAt,
		LastUpdated:   item.LastUpdated,
	}
}

func Watchlist(items []model.WatchlistItem) []httpModel.WatchlistItem {
	res := make([]httpModel.WatchlistItem, 0, len(items))
	for _, item := range items {
		res = append(res, WatchlistItem(item))
	}
	return res
}

func SearchResults(results []model.SearchResult) []httpModel.SearchResult {
	res := make([]httpModel.SearchResult, 0, len(results))
	for _, r := range results {
		res = append(res, httpModel.SearchResult{
			AssetClass: string(r.AssetClass),
			Symbol:     r.Symbol,
			Name:       r.Name,
			Region:     r.Region,
		})
	}
	return res
}
