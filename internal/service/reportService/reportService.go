package reportService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/reportGenerator/markdownRenderer"
	"github.com/KotFed0t/invest_tracker/utils"
)

var ErrUploadDisabled = errors.New("report upload is not configured")

type Portfolios interface {
	GetPortfolio(ctx context.Context, id string) (model.PortfolioView, error)
	ListPortfolios(ctx context.Context) ([]model.PortfolioSummary, error)
	Stats(ctx context.Context, portfolioID string) (model.PerformanceStats, error)
}

type Generator interface {
	Generate(ctx context.Context, reports []model.PortfolioReport) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) (int, error)
}

type ReportService struct {
	portfolios Portfolios
	generator  Generator
	storage    CloudStorage
	clock      func() time.Time
}

// New builds the service. storage may be nil when uploads are disabled.
func New(portfolios Portfolios, generator Generator, storage CloudStorage) *ReportService {
	return &ReportService{
		portfolios: portfolios,
		generator:  generator,
		storage:    storage,
		clock:      time.Now,
	}
}

// Reports collects the given portfolios, or all of them when ids is empty.
func (s *ReportService) Reports(ctx context.Context, ids ...string) ([]model.PortfolioReport, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.Reports"

	if len(ids) == 0 {
		summaries, err := s.portfolios.ListPortfolios(ctx)
		if err != nil {
			slog.Error("got error from portfolios.ListPortfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return nil, err
		}
		for _, summary := range summaries {
			ids = append(ids, summary.ID)
		}
	}

	now := s.clock()
	reports := make([]model.PortfolioReport, 0, len(ids))
	for _, id := range ids {
		view, err := s.portfolios.GetPortfolio(ctx, id)
		if err != nil {
			return nil, err
		}
		stats, err := s.portfolios.Stats(ctx, view.ID)
		if err != nil {
			return nil, err
		}
		reports = append(reports, model.PortfolioReport{Portfolio: view, Stats: stats, GeneratedAt: now})
	}
	return reports, nil
}

// Summary renders one portfolio as markdown. An empty id selects the active
// portfolio.
func (s *ReportService) Summary(ctx context.Context, portfolioID string) (string, error) {
	reports, err := s.Reports(ctx, portfolioID)
	if err != nil {
		return "", err
	}
	return markdownRenderer.Render(reports[0]), nil
}

// Export renders the workbook for the given portfolios, or all of them.
func (s *ReportService) Export(ctx context.Context, ids ...string) (fileBytes []byte, filename string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.Export"

	slog.Debug("Export start", slog.String("rqID", rqID), slog.String("op", op), slog.Any("ids", ids))
	defer func() {
		slog.Debug("Export finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	reports, err := s.Reports(ctx, ids...)
	if err != nil {
		return nil, "", err
	}

	fileBytes, ext, err := s.generator.Generate(ctx, reports)
	if err != nil {
		slog.Error("got error from generator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	return fileBytes, s.filename(reports, ext), nil
}

// ExportAndUpload exports and shares the workbook, returning a download link.
func (s *ReportService) ExportAndUpload(ctx context.Context, ids ...string) (string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "ReportService.ExportAndUpload"

	if s.storage == nil {
		return "", ErrUploadDisabled
	}

	fileBytes, filename, err := s.Export(ctx, ids...)
	if err != nil {
		return "", err
	}

	link, err := s.storage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from storage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", fmt.Errorf("upload report: %w", err)
	}

	slog.Info("report uploaded", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))
	return link, nil
}

// DeleteOldReports removes expired uploads. It is a no-op without storage.
func (s *ReportService) DeleteOldReports(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}
	_, err := s.storage.DeleteOldFiles(ctx)
	return err
}

func (s *ReportService) filename(reports []model.PortfolioReport, ext string) string {
	name := "portfolios"
	if len(reports) == 1 {
		name = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			default:
				return '_'
			}
		}, reports[0].Portfolio.Name)
	}
	return fmt.Sprintf("invest_tracker_%s_%s%s", name, s.clock().Format("20060102_150405"), ext)
}
