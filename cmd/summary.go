package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/invest_tracker/internal/service/reportService"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

type summaryCmd struct {
	cfg       *config.Config
	portfolio string
	refresh   bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print a portfolio summary" }
func (*summaryCmd) Usage() string {
	return `summary [-p <portfolio id>] [-u]

  Prints totals, holdings, performance and recent transactions of a portfolio.
  Without -p the active portfolio is used.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.portfolio, "p", "", "portfolio id, defaults to the active portfolio")
	f.BoolVar(&c.refresh, "u", false, "fetch the latest prices before summarizing")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := newApp(c.cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.close()

	manager, err := a.startManager(ctx, c.cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading portfolios: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.refresh {
		if err = manager.RefreshPrices(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
		}
	} else if err = manager.Revalue(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error revaluing: %v\n", err)
		return subcommands.ExitFailure
	}

	md, err := reportService.New(manager, xlsxGenerator.New(), nil).Summary(ctx, c.portfolio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building summary: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(md)
	return subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
