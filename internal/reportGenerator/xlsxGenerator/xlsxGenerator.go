package xlsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	colorSummary      = "#cfe2f3"
	colorHoldings     = "#d9ead3"
	colorPerformance  = "#f9cb9c"
	colorTransactions = "#cccccc"

	maxSheetName = 31
	dateLayout   = "2006-01-02 15:04:05"
)

var (
	ErrNoPortfolios = errors.New("no portfolios to export")

	sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders one sheet per portfolio.
func (g *XLSXGenerator) Generate(ctx context.Context, reports []model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	if len(reports) == 0 {
		return nil, "", ErrNoPortfolios
	}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("portfolios", len(reports)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("closing workbook failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	for i, report := range reports {
		if err := g.fillSheet(f, report, i+1); err != nil {
			slog.Error("filling sheet failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, "", err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("deleting Sheet1 failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("writing workbook failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

// SheetName builds an Excel-safe sheet title of at most 31 runes.
func SheetName(ordinal int, name string) string {
	sheet := fmt.Sprintf("%d. %s", ordinal, sheetNameReplacer.Replace(name))
	for utf8.RuneCountInString(sheet) > maxSheetName {
		_, size := utf8.DecodeLastRuneInString(sheet)
		sheet = sheet[:len(sheet)-size]
	}
	return sheet
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, report model.PortfolioReport, ordinal int) error {
	p := report.Portfolio
	w := &sheetWriter{f: f, sheet: SheetName(ordinal, p.Name), row: 1}

	if _, err := f.NewSheet(w.sheet); err != nil {
		return fmt.Errorf("new sheet %q: %w", w.sheet, err)
	}

	if err := w.section("Summary", "B", colorSummary); err != nil {
		return err
	}
	w.pair("Portfolio", p.Name)
	w.pair("Cash", p.CashBalance.InexactFloat64())
	w.pair("Total value", p.TotalValue.InexactFloat64())
	w.pair("Invested", p.TotalInvested.InexactFloat64())
	w.pair("ROI %", p.TotalROI.Round(2).InexactFloat64())
	w.pair("Generated", report.GeneratedAt.Format(dateLayout))
	w.row++

	if err := w.section("Holdings", "I", colorHoldings); err != nil {
		return err
	}
	w.values("name", "symbol", "class", "quantity", "average cost", "last price", "value", "P/L", "P/L %")
	for _, h := range p.Holdings {
		w.values(
			h.Name,
			h.Symbol,
			string(h.AssetClass),
			h.Quantity.InexactFloat64(),
			h.AverageCost.InexactFloat64(),
			h.LastPrice.InexactFloat64(),
			h.CurrentValue().InexactFloat64(),
			h.UnrealizedPL().InexactFloat64(),
			h.UnrealizedPLPercent().Round(2).InexactFloat64(),
		)
	}
	w.row++

	s := report.Stats
	if err := w.section("Performance", "B", colorPerformance); err != nil {
		return err
	}
	w.pair("Total trades", s.TotalTrades)
	w.pair("Winning trades", s.WinningTrades)
	w.pair("Losing trades", s.LosingTrades)
	w.pair("Win rate %", s.WinRate.Round(2).InexactFloat64())
	w.pair("Max drawdown %", s.MaxDrawdown.Round(2).InexactFloat64())
	w.pair("Volatility ratio", s.VolatilityRatio.Round(2).InexactFloat64())
	w.pair("YTD return %", s.YTDReturn.Round(2).InexactFloat64())
	w.pair("Cash %", s.CashPercentage.Round(2).InexactFloat64())
	w.pair("Best asset", s.BestPerformingAsset)
	w.pair("Worst asset", s.WorstPerformingAsset)
	w.pair("Top holding", s.TopHolding)
	w.row++

	if err := w.section("Transactions", "H", colorTransactions); err != nil {
		return err
	}
	w.values("date", "kind", "class", "symbol", "name", "quantity", "price", "total")
	for _, tx := range p.Transactions {
		w.values(
			tx.Timestamp.Format(dateLayout),
			string(tx.Kind),
			string(tx.AssetClass),
			tx.Symbol,
			tx.Name,
			optional(tx.IsTrade(), tx.Quantity),
			optional(tx.IsTrade(), tx.Price),
			tx.TotalAmount.InexactFloat64(),
		)
	}

	return f.SetColWidth(w.sheet, "A", "I", 16)
}

// section writes a merged, colored title spanning A..lastCol.
func (w *sheetWriter) section(title, lastCol, color string) error {
	first := fmt.Sprintf("A%d", w.row)
	if err := w.f.MergeCell(w.sheet, first, fmt.Sprintf("%s%d", lastCol, w.row)); err != nil {
		return err
	}
	_ = w.f.SetCellStr(w.sheet, first, title)

	styleID, err := w.f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, first, first, styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	w.row++
	return nil
}

func (w *sheetWriter) pair(label string, value any) {
	w.values(label, value)
}

func (w *sheetWriter) values(values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.row)
		_ = w.f.SetCellValue(w.sheet, cell, v)
	}
	w.row++
}

func optional(ok bool, d decimal.Decimal) any {
	if !ok {
		return ""
	}
	return d.InexactFloat64()
}
