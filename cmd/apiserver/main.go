// Command apiserver runs the patent infringement assessment API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patlytics/patlytics/internal/application/auth"
	"github.com/patlytics/patlytics/internal/application/infringement"
	"github.com/patlytics/patlytics/internal/application/resolver"
	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	filecatalog "github.com/patlytics/patlytics/internal/infrastructure/catalog"
	"github.com/patlytics/patlytics/internal/infrastructure/database/postgres"
	"github.com/patlytics/patlytics/internal/infrastructure/database/postgres/repositories"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/prometheus"
	"github.com/patlytics/patlytics/internal/infrastructure/search/opensearch"
	anthropicgen "github.com/patlytics/patlytics/internal/intelligence/anthropic"
	openaigen "github.com/patlytics/patlytics/internal/intelligence/openai"
	httpiface "github.com/patlytics/patlytics/internal/interfaces/http"
	"github.com/patlytics/patlytics/internal/interfaces/http/handlers"
	"github.com/patlytics/patlytics/internal/interfaces/http/middleware"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "apiserver",
		Short:        "Patent infringement assessment API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      cfg.Log.OutputPaths,
		ErrorOutputPaths: cfg.Log.ErrorOutputPaths,
	})
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

	metrics := prometheus.NewCollector()

	pingers := map[string]handlers.Pinger{
		"postgres": handlers.PingFunc(pool.Ping),
	}

	var (
		cat      catalog.Catalog
		searcher catalog.CompanySearcher
	)
	switch cfg.Catalog.Backend {
	case "file":
		fc, err := filecatalog.NewFileCatalog(cfg.Catalog.PatentsFile, cfg.Catalog.CompaniesFile)
		if err != nil {
			return err
		}
		cat = fc
		searcher = resolver.NoIndexSearcher{}
	default:
		osClient, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger)
		if err != nil {
			return err
		}
		osClient.StartHealthCheck(ctx)
		osSearcher := opensearch.NewSearcher(osClient, cfg.Resolver)
		cat = opensearch.NewCatalog(osSearcher)
		searcher = osSearcher
		pingers["opensearch"] = handlers.PingFunc(osClient.Ping)
	}

	var generator infringement.TextGenerator
	switch cfg.Model.Provider {
	case config.ProviderOpenAI:
		generator = openaigen.NewClient(cfg.Model, logger)
	default:
		generator = anthropicgen.NewClient(cfg.Model, logger)
	}

	userRepo := repositories.NewUserRepository(pool)
	reportRepo := repositories.NewReportRepository(pool)

	fuzzyResolver := resolver.NewFuzzyResolver(searcher, cat, cfg.Resolver, logger)
	authService := auth.NewService(userRepo, cfg.Auth, logger)
	assessService := infringement.NewService(
		cat, fuzzyResolver, generator, reportRepo, metrics, logger, cfg.Model.RequestTimeout)

	router := httpiface.NewRouter(httpiface.RouterConfig{
		Logger:              logger,
		AuthHandler:         handlers.NewAuthHandler(authService, reportRepo),
		InfringementHandler: handlers.NewInfringementHandler(assessService, fuzzyResolver, cat),
		ReportHandler:       handlers.NewReportHandler(reportRepo),
		HealthHandler:       handlers.NewHealthHandler(pingers),
		Auth:                middleware.NewAuth(authService),
		HTTPMetrics:         metrics,
		MetricsHandler:      metrics.Handler(),
		CORSAllowedOrigins:  cfg.Server.CORSAllowedOrigins,
	})

	return httpiface.NewServer(cfg.Server, router, logger).Run(ctx)
}
