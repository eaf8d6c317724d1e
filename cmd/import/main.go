package main

import (
	"fmt"
	"os"

	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/inkwellapp/inkwell/pkg/covers"
	"github.com/inkwellapp/inkwell/pkg/database"
	"github.com/inkwellapp/inkwell/pkg/importer"
	"github.com/inkwellapp/inkwell/pkg/migrations"
	"github.com/inkwellapp/inkwell/pkg/search"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	app := &cli.App{
		Name:        "import",
		Usage:       "CLI to import books from CSV files",
		Description: "CLI to import books from CSV files",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "import books from a CSV file",
				ArgsUsage: "<file.csv>",
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return errors.New("expected exactly one CSV file path")
					}

					if _, err := migrations.BringUpToDate(c.Context, db); err != nil {
						return err
					}

					file, err := os.Open(c.Args().First())
					if err != nil {
						return errors.WithStack(err)
					}
					defer file.Close()

					var coverClient covers.Client
					if cfg.CoverFetchEnabled {
						coverClient = covers.NewGoogleClient(cfg)
					}

					ctx := log.WithContext(c.Context)
					summary, err := importer.New(cfg, db, coverClient).Run(ctx, file)
					if err != nil {
						return err
					}

					fmt.Printf("Imported %d books (%d invalid, %d duplicates)\n", summary.Success, summary.Invalid, summary.Duplicate)
					return nil
				},
			},
			{
				Name:  "reindex",
				Usage: "rebuild the book search index",
				Action: func(c *cli.Context) error {
					return search.NewService(db).RebuildIndex(c.Context)
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}
