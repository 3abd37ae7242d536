// Command reindex rebuilds the OpenSearch indices from the database of
// record or from JSON dataset files.  Each run creates a fresh timestamped
// index, bulk-loads it, and atomically swaps the serving alias, so readers
// never see a partially built index.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	filecatalog "github.com/patlytics/patlytics/internal/infrastructure/catalog"
	"github.com/patlytics/patlytics/internal/infrastructure/database/postgres"
	"github.com/patlytics/patlytics/internal/infrastructure/database/postgres/repositories"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patlytics/internal/infrastructure/search/opensearch"
)

type options struct {
	configPath    string
	source        string
	patentsFile   string
	companiesFile string
	keepOld       bool
}

func main() {
	opts := &options{}

	root := &cobra.Command{
		Use:          "reindex",
		Short:        "Rebuild the OpenSearch indices",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVar(&opts.source, "source", "db", "dataset source: db or file")
	root.PersistentFlags().StringVar(&opts.patentsFile, "patents-file", "", "patents JSON file (file source)")
	root.PersistentFlags().StringVar(&opts.companiesFile, "companies-file", "", "companies JSON file (file source)")
	root.PersistentFlags().BoolVar(&opts.keepOld, "keep-old", false, "keep superseded index generations")

	root.AddCommand(
		&cobra.Command{
			Use:   "patents",
			Short: "Rebuild the patent index",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return reindex(cmd.Context(), opts, reindexPatents)
			},
		},
		&cobra.Command{
			Use:   "companies",
			Short: "Rebuild the company-products index",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return reindex(cmd.Context(), opts, reindexCompanies)
			},
		},
		&cobra.Command{
			Use:   "all",
			Short: "Rebuild both indices",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := reindex(cmd.Context(), opts, reindexPatents); err != nil {
					return err
				}
				return reindex(cmd.Context(), opts, reindexCompanies)
			},
		},
		&cobra.Command{
			Use:   "db-import",
			Short: "Seed the database from the JSON dataset files",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return dbImport(cmd.Context(), opts)
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env aggregates the wired dependencies one reindex run needs.
type env struct {
	cfg     *config.Config
	logger  logging.Logger
	indexer *opensearch.Indexer
	opts    *options

	listPatents   func(context.Context) ([]catalog.PatentRecord, error)
	listCompanies func(context.Context) ([]catalog.CompanyProfile, error)
}

func reindex(ctx context.Context, opts *options, run func(context.Context, *env) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}

	osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
	if err != nil {
		return err
	}

	e := &env{
		cfg:     cfg,
		logger:  logger.Named("reindex"),
		indexer: opensearch.NewIndexer(osClient, logger),
		opts:    opts,
	}

	switch opts.source {
	case "file":
		if opts.patentsFile == "" || opts.companiesFile == "" {
			return fmt.Errorf("reindex: --patents-file and --companies-file are required with --source=file")
		}
		fc, err := filecatalog.NewFileCatalog(opts.patentsFile, opts.companiesFile)
		if err != nil {
			return err
		}
		e.listPatents = listAllPatents(fc)
		e.listCompanies = listAllCompanies(fc)
	case "db":
		pool, err := postgres.Connect(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
		repo := repositories.NewCatalogRepository(pool)
		e.listPatents = repo.ListPatents
		e.listCompanies = repo.ListCompanyProfiles
	default:
		return fmt.Errorf("reindex: unknown source %q", opts.source)
	}

	return run(ctx, e)
}

func reindexPatents(ctx context.Context, e *env) error {
	patents, err := e.listPatents(ctx)
	if err != nil {
		return err
	}
	docs := make([]opensearch.Document, 0, len(patents))
	for _, p := range patents {
		docs = append(docs, opensearch.Document{ID: p.PatentID, Body: p})
	}
	return rebuild(ctx, e, e.cfg.OpenSearch.PatentIndex, opensearch.PatentIndexBody, docs)
}

func reindexCompanies(ctx context.Context, e *env) error {
	companies, err := e.listCompanies(ctx)
	if err != nil {
		return err
	}
	docs := make([]opensearch.Document, 0, len(companies))
	for _, c := range companies {
		docs = append(docs, opensearch.Document{ID: c.Name, Body: c})
	}
	return rebuild(ctx, e, e.cfg.OpenSearch.CompanyIndex, opensearch.CompanyIndexBody, docs)
}

// rebuild creates the timestamped index, loads it, swaps the alias, and
// prunes superseded generations unless --keep-old was given.
func rebuild(ctx context.Context, e *env, alias string, settings []byte, docs []opensearch.Document) error {
	previous, err := e.indexer.ListAliasIndices(ctx, alias)
	if err != nil {
		return err
	}

	indexName := opensearch.TimestampedIndexName(alias, time.Now().UTC().Format("20060102"))
	exists, err := e.indexer.IndexExists(ctx, indexName)
	if err != nil {
		return err
	}
	if exists {
		// A same-day rerun replaces the day's generation.
		if err := e.indexer.DeleteIndex(ctx, indexName); err != nil {
			return err
		}
	}

	if err := e.indexer.CreateIndex(ctx, indexName, settings); err != nil {
		return err
	}
	if err := e.indexer.BulkIndex(ctx, indexName, docs); err != nil {
		return err
	}
	if err := e.indexer.SwapAlias(ctx, alias, indexName); err != nil {
		return err
	}

	if !e.opts.keepOld {
		for _, old := range previous {
			if old == indexName {
				continue
			}
			if err := e.indexer.DeleteIndex(ctx, old); err != nil {
				e.logger.Warn("failed to prune superseded index",
					logging.String("index", old), logging.Err(err))
			}
		}
	}

	e.logger.Info("index rebuilt",
		logging.String("alias", alias),
		logging.String("index", indexName),
		logging.Int("documents", len(docs)))
	return nil
}

// dbImport loads the JSON dataset files into Postgres so later runs can
// rebuild the indices from the database of record.
func dbImport(ctx context.Context, opts *options) error {
	if opts.patentsFile == "" || opts.companiesFile == "" {
		return fmt.Errorf("reindex: --patents-file and --companies-file are required for db-import")
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	logger = logger.Named("reindex")

	fc, err := filecatalog.NewFileCatalog(opts.patentsFile, opts.companiesFile)
	if err != nil {
		return err
	}
	patents, err := listAllPatents(fc)(ctx)
	if err != nil {
		return err
	}
	companies, err := listAllCompanies(fc)(ctx)
	if err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database, logger); err != nil {
			return err
		}
	}

	repo := repositories.NewCatalogRepository(pool)
	if err := repo.ImportPatents(ctx, patents); err != nil {
		return err
	}
	if err := repo.ImportCompanies(ctx, companies); err != nil {
		return err
	}
	logger.Info("dataset imported",
		logging.Int("patents", len(patents)),
		logging.Int("companies", len(companies)))
	return nil
}

func listAllPatents(fc *filecatalog.FileCatalog) func(context.Context) ([]catalog.PatentRecord, error) {
	return func(ctx context.Context) ([]catalog.PatentRecord, error) {
		ids, err := fc.ListPatentIDs(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalog.PatentRecord, 0, len(ids))
		for _, id := range ids {
			p, err := fc.GetPatent(ctx, id)
			if err != nil {
				return nil, err
			}
			out = append(out, *p)
		}
		return out, nil
	}
}

func listAllCompanies(fc *filecatalog.FileCatalog) func(context.Context) ([]catalog.CompanyProfile, error) {
	return func(ctx context.Context) ([]catalog.CompanyProfile, error) {
		names, err := fc.ListCompanyNames(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]catalog.CompanyProfile, 0, len(names))
		for _, name := range names {
			c, err := fc.GetCompany(ctx, name)
			if err != nil {
				return nil, err
			}
			out = append(out, *c)
		}
		return out, nil
	}
}
