package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"nflstats/ingestion/internal/catalog"
	"nflstats/ingestion/internal/client"
	"nflstats/ingestion/internal/config"
	"nflstats/ingestion/internal/ingest"
	"nflstats/ingestion/internal/repository"
)

var errNoSelection = errors.New("select families with --families or --all")

type runOptions struct {
	families []string
	all      bool
	migrate  bool
	workers  int
}

func newRootCmd() *cobra.Command {
	var feedsFile string

	root := &cobra.Command{
		Use:           "ingest",
		Short:         "Run NFL stat feed families once",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339})
		},
	}
	root.PersistentFlags().StringVar(&feedsFile, "feeds", "", "feed catalog file (defaults to FEEDS_FILE)")

	root.AddCommand(runCmd(&feedsFile), migrateCmd(), familiesCmd(&feedsFile))
	return root
}

func runCmd(feedsFile *string) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch and write the selected families",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.families = trimNames(opts.families)
			if len(opts.families) == 0 && !opts.all {
				return errNoSelection
			}
			return runFamilies(cmd.Context(), *feedsFile, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.families, "families", nil, "comma-separated feed families to run")
	cmd.Flags().BoolVar(&opts.all, "all", false, "run every family in the catalog")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "apply the schema before running")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "row workers per family (defaults to INGEST_WORKERS)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema and every catalog table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig("", 0)
			if err != nil {
				return err
			}
			db, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context(), catalog.TableDefs()); err != nil {
				return err
			}
			log.Info().Str("schema", db.Schema()).Msg("Schema migrated")
			return nil
		},
	}
}

func familiesCmd(feedsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List the families in the feed catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *feedsFile
			if path == "" {
				cfg, err := loadConfig("", 0)
				if err != nil {
					return err
				}
				path = cfg.FeedsFile
			}

			feeds, err := config.LoadFeeds(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FAMILY\tPERIOD\tIDENTITY\tURLS")
			for _, name := range feeds.Names() {
				f := feeds.Feeds[name]
				period := f.Period
				if period == "" {
					period = "none"
				}
				identity := f.Identity.Strategy + ":" + f.Identity.Column
				if f.Authoritative {
					identity += " (authoritative)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", name, period, identity, len(f.URLs))
			}
			return w.Flush()
		},
	}
}

func runFamilies(ctx context.Context, feedsFile string, opts runOptions) error {
	cfg, err := loadConfig(feedsFile, opts.workers)
	if err != nil {
		return err
	}

	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		return err
	}

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if opts.migrate {
		if err := db.Migrate(ctx, catalog.TableDefs()); err != nil {
			return err
		}
	}

	feedClient := client.NewClient(client.Options{
		Timeout:     cfg.FetchTimeout,
		MaxRetries:  cfg.FetchRetries,
		Parallel:    cfg.FetchParallel,
		DownloadDir: cfg.DownloadDir,
	})

	runner, err := ingest.BuildRunner(feeds, db, feedClient, ingest.WithWorkers(cfg.Workers()))
	if err != nil {
		return err
	}

	results, err := runner.RunSelected(ctx, runner.Selection(opts.families, opts.all))
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "failed"
		}
		log.Info().
			Str("family", r.Family).
			Str("status", status).
			Int("rows", r.Summary.Rows).
			Int("created", r.Summary.Created).
			Int("updated", r.Summary.Updated).
			Int("unmatched", r.Summary.Unmatched).
			Int("failed", r.Summary.Failed).
			Dur("duration", r.Summary.Duration).
			Msg("Family result")
	}
	return err
}

// loadConfig reads the environment and applies command line overrides
func loadConfig(feedsFile string, workers int) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if feedsFile != "" {
		cfg.FeedsFile = feedsFile
	}
	if workers > 0 {
		cfg.IngestWorkers = workers
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (*repository.Database, error) {
	return repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
		Schema:   cfg.DatabaseSchema,
		MaxConns: cfg.DatabaseMaxConns,
	})
}

func trimNames(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
