package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"shadowcal/internal/database"
	"shadowcal/internal/logging"
	"shadowcal/internal/relocate"
	"shadowcal/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "relocate",
		Usage: "move collaborative content from the legacy key layout to the flat layout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db",
				Usage:    "path to the sqlite database",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "report what would be copied without writing",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := logging.Setup(c.String("log-level"), "text")

	db, err := database.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	runner := &relocate.Runner{
		Content: store.NewContentStore(db),
		DryRun:  c.Bool("dry-run"),
		Logger:  logger,
	}

	sum, err := runner.Run(c.Context)
	if err != nil {
		return err
	}

	logger.Info("relocation finished",
		"scanned", sum.Scanned,
		"copied", sum.Copied,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"dry_run", c.Bool("dry-run"))

	if sum.Failed > 0 {
		return fmt.Errorf("%d records failed to copy", sum.Failed)
	}
	return nil
}
