package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/KotFed0t/invest_tracker/config"
	"github.com/KotFed0t/invest_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/invest_tracker/internal/reportGenerator/xlsxGenerator"
	"github.com/KotFed0t/invest_tracker/internal/service/reportService"
	"github.com/google/subcommands"
)

type exportCmd struct {
	cfg    *config.Config
	output string
	upload bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export portfolios to an xlsx workbook" }
func (*exportCmd) Usage() string {
	return `export [-o <file.xlsx>] [-upload] [portfolio id...]

  Writes one sheet per portfolio. Without ids every portfolio is exported.
  With -upload the workbook is shared through Google Drive and the link printed.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, defaults to a generated name in the current directory")
	f.BoolVar(&c.upload, "upload", false, "upload to Google Drive instead of writing a file")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	if err = manager.Revalue(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error revaluing: %v\n", err)
		return subcommands.ExitFailure
	}

	var storage reportService.CloudStorage
	if c.upload {
		if c.cfg.GoogleDrive.CredentialsFile == "" {
			fmt.Fprintln(os.Stderr, "Error: GOOGLE_DRIVE_CREDENTIALS_FILE is not set")
			return subcommands.ExitUsageError
		}
		drive, err := googleDriveApi.New(ctx, c.cfg.GoogleDrive.CredentialsFile, c.cfg.GoogleDrive.FileTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to Google Drive: %v\n", err)
			return subcommands.ExitFailure
		}
		storage = drive
	}

	reports := reportService.New(manager, xlsxGenerator.New(), storage)

	if c.upload {
		link, err := reports.ExportAndUpload(ctx, f.Args()...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(link)
		return subcommands.ExitSuccess
	}

	fileBytes, filename, err := reports.Export(ctx, f.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.output != "" {
		filename = c.output
	}
	if err = os.WriteFile(filename, fileBytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
		return subcommands.ExitFailure
	}
	fmt.Println(filename)
	return subcommands.ExitSuccess
}
