// Package opensearch wraps the OpenSearch Go client with the search,
// indexing, and catalog operations the service needs.  All request bodies
// are built as maps and marshaled, keeping the query DSL visible in one
// place per operation.
package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	opensearchclient "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
)

// Client is a thin wrapper over the OpenSearch client that adds health
// checking and carries the per-request timeout from configuration.
type Client struct {
	os      *opensearchclient.Client
	cfg     config.OpenSearchConfig
	logger  logging.Logger
	timeout time.Duration
}

// NewClient builds an OpenSearch client from configuration and verifies the
// cluster is reachable before returning.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, logger logging.Logger) (*Client, error) {
	osCfg := opensearchclient.Config{
		Addresses:  cfg.Addresses,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.InsecureSkipTLSVerify {
		osCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	osc, err := opensearchclient.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("opensearch: creating client: %w", err)
	}

	c := &Client{
		os:      osc,
		cfg:     cfg,
		logger:  logger.Named("opensearch"),
		timeout: cfg.RequestTimeout,
	}
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	c.logger.Info("connected to opensearch cluster",
		logging.Any("addresses", cfg.Addresses))
	return c, nil
}

// Ping checks cluster reachability within the configured request timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := opensearchapi.PingRequest{}
	res, err := req.Do(ctx, c.os)
	if err != nil {
		return fmt.Errorf("opensearch: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("opensearch: ping returned status %s", res.Status())
	}
	return nil
}

// StartHealthCheck pings the cluster on the configured interval until ctx is
// cancelled, logging transitions so operators can see index availability.
func (c *Client) StartHealthCheck(ctx context.Context) {
	interval := c.cfg.HealthCheckInterval
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		healthy := true
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				err := c.Ping(ctx)
				if err != nil && healthy {
					healthy = false
					c.logger.Warn("opensearch cluster became unreachable", logging.Err(err))
				} else if err == nil && !healthy {
					healthy = true
					c.logger.Info("opensearch cluster recovered")
				}
			}
		}
	}()
}

// withTimeout derives a bounded context for a single request.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
