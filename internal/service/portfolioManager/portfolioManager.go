package portfolioManager

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/model"
	"github.com/KotFed0t/invest_tracker/internal/performanceAnalyzer"
	"github.com/KotFed0t/invest_tracker/internal/persistence"
	"github.com/KotFed0t/invest_tracker/internal/portfolio"
	"github.com/KotFed0t/invest_tracker/internal/priceFeed"
	"github.com/KotFed0t/invest_tracker/internal/service"
	"github.com/KotFed0t/invest_tracker/internal/valuationEngine"
	"github.com/KotFed0t/invest_tracker/utils"
	"github.com/google/uuid"
)

type PriceFeed interface {
	GetStockQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetCryptoQuote(ctx context.Context, id string) (model.Quote, error)
	Refresh(ctx context.Context, targets []model.AssetKey) ([]model.Quote, error)
}

type StateWriter interface {
	Submit(state persistence.State)
}

type Options struct {
	DefaultName string
	// nil means performanceAnalyzer.DefaultRiskFreeRate; zero is a valid rate
	RiskFreeRate  *float64
	MaxSnapshots  int
	CommandBuffer int
	Clock         func() time.Time
	NewID         func() string
	CryptoID      func(symbol string) string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultName:   cfg.Portfolio.DefaultName,
		RiskFreeRate:  &cfg.Portfolio.RiskFreeRate,
		MaxSnapshots:  cfg.Portfolio.MaxSnapshots,
		CommandBuffer: cfg.Portfolio.CommandBuffer,
	}
}

// PortfolioManager owns every portfolio and the watchlist. All reads and
// writes run one at a time on the goroutine started by Run.
type PortfolioManager struct {
	opts   Options
	feed   PriceFeed
	writer StateWriter
	engine *valuationEngine.ValuationEngine

	commands chan func()
	done     chan struct{}
	running  sync.Once

	// owned by the Run goroutine
	portfolios map[string]*portfolio.Portfolio
	order      []string
	activeID   string
	watchlist  []model.WatchlistItem

	subsMu    sync.Mutex
	subs      map[int]chan struct{}
	nextSubID int
}

// New builds a manager. feed and writer may be nil. Run must be started
// before any other method is used.
func New(opts Options, feed PriceFeed, writer StateWriter) *PortfolioManager {
	if opts.DefaultName == "" {
		opts.DefaultName = "Main"
	}
	if opts.CommandBuffer <= 0 {
		opts.CommandBuffer = 64
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.RiskFreeRate == nil {
		rate := performanceAnalyzer.DefaultRiskFreeRate
		opts.RiskFreeRate = &rate
	}
	if opts.CryptoID == nil {
		opts.CryptoID = priceFeed.CryptoID
	}

	var engineFeed valuationEngine.PriceFeed
	if feed != nil {
		engineFeed = feed
	}

	return &PortfolioManager{
		opts:       opts,
		feed:       feed,
		writer:     writer,
		engine:     valuationEngine.New(engineFeed, opts.CryptoID, opts.MaxSnapshots),
		commands:   make(chan func(), opts.CommandBuffer),
		done:       make(chan struct{}),
		portfolios: make(map[string]*portfolio.Portfolio),
		subs:       make(map[int]chan struct{}),
	}
}

// Run executes queued commands until ctx is done.
func (m *PortfolioManager) Run(ctx context.Context) {
	started := false
	m.running.Do(func() { started = true })
	if !started {
		return
	}
	defer close(m.done)

	slog.Info("portfolio manager started")

	for {
		select {
		case cmd := <-m.commands:
			cmd()
		case <-ctx.Done():
			slog.Info("portfolio manager stopped")
			return
		}
	}
}

// do runs fn on the manager goroutine and waits for its result.
func (m *PortfolioManager) do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	cmd := func() { result <- fn() }

	select {
	case m.commands <- cmd:
	case <-m.done:
		return service.ErrManagerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-m.done:
		select {
		case err := <-result:
			return err
		default:
			return service.ErrManagerStopped
		}
	}
}

// Subscribe registers for change notifications. Signals carry no payload and
// coalesce; readers re-read the state they need.
func (m *PortfolioManager) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	m.subsMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = ch
	m.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
		})
	}
}

func (m *PortfolioManager) notify() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// committed runs after every accepted mutation.
func (m *PortfolioManager) committed(ctx context.Context) {
	m.notify()
	if m.writer != nil {
		m.writer.Submit(m.state())
	}
	slog.Debug("state committed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)))
}

func (m *PortfolioManager) state() persistence.State {
	views := make([]model.PortfolioView, 0, len(m.order))
	for _, id := range m.order {
		views = append(views, m.portfolios[id].View())
	}
	return persistence.State{
		Portfolios: views,
		Watchlist:  append([]model.WatchlistItem(nil), m.watchlist...),
	}
}

// portfolio resolves id, where "" means the active portfolio.
func (m *PortfolioManager) portfolio(id string) (*portfolio.Portfolio, error) {
	if id == "" {
		id = m.activeID
	}
	p, ok := m.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", service.ErrPortfolioNotFound, id)
	}
	return p, nil
}

func (m *PortfolioManager) newPortfolio(name string) *portfolio.Portfolio {
	p := portfolio.New(m.opts.NewID(), name, m.opts.Clock)
	m.portfolios[p.ID] = p
	m.order = append(m.order, p.ID)
	if m.activeID == "" {
		m.activeID = p.ID
	}
	return p
}

func (m *PortfolioManager) ensurePortfolio() {
	if len(m.order) == 0 {
		m.newPortfolio(m.opts.DefaultName)
	}
	if _, ok := m.portfolios[m.activeID]; !ok {
		m.activeID = m.order[0]
	}
}
