package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// Indexer manages index lifecycle and bulk document loading.  Reindex runs
// build a fresh timestamped index and swap the serving alias to it so reads
// never observe a half-built index.
type Indexer struct {
	client *Client
	logger logging.Logger
}

// NewIndexer returns an Indexer bound to the given client.
func NewIndexer(client *Client, logger logging.Logger) *Indexer {
	return &Indexer{client: client, logger: logger.Named("indexer")}
}

// IndexExists reports whether the named index or alias exists.
func (ix *Indexer) IndexExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := ix.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.IndicesExistsRequest{Index: []string{name}}
	res, err := req.Do(ctx, ix.client.os)
	if err != nil {
		return false, fmt.Errorf("opensearch: checking index %s: %w", name, err)
	}
	defer res.Body.Close()
	return res.StatusCode == 200, nil
}

// CreateIndex creates an index with the given settings-and-mappings body.
func (ix *Indexer) CreateIndex(ctx context.Context, name string, body []byte) error {
	ctx, cancel := ix.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, ix.client.os)
	if err != nil {
		return fmt.Errorf("opensearch: creating index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("opensearch: creating index %s returned status %s", name, res.Status())
	}
	ix.logger.Info("created index", logging.String("index", name))
	return nil
}

// DeleteIndex removes an index.  Missing indices are not an error.
func (ix *Indexer) DeleteIndex(ctx context.Context, name string) error {
	ctx, cancel := ix.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.IndicesDeleteRequest{Index: []string{name}}
	res, err := req.Do(ctx, ix.client.os)
	if err != nil {
		return fmt.Errorf("opensearch: deleting index %s: %w", name, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("opensearch: deleting index %s returned status %s", name, res.Status())
	}
	return nil
}

// Document is one document destined for bulk indexing.
type Document struct {
	ID   string
	Body interface{}
}

// BulkIndex loads documents into the named index using the bulk indexer and
// returns an error when any document fails.
func (ix *Indexer) BulkIndex(ctx context.Context, index string, docs []Document) error {
	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
		Client: ix.client.os,
		Index:  index,
	})
	if err != nil {
		return fmt.Errorf("opensearch: creating bulk indexer: %w", err)
	}

	for _, doc := range docs {
		body, err := json.Marshal(doc.Body)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeSerialization,
				"encoding document %s for index %s", doc.ID, index)
		}
		item := opensearchutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: doc.ID,
			Body:       bytes.NewReader(body),
			// The callback runs on the indexer's worker goroutines, so it
			// only logs; the failure count comes from Stats after Close.
			OnFailure: func(_ context.Context, item opensearchutil.BulkIndexerItem, _ opensearchutil.BulkIndexerResponseItem, err error) {
				ix.logger.Warn("bulk index item failed",
					logging.String("index", index),
					logging.String("doc_id", item.DocumentID),
					logging.Err(err))
			},
		}
		if err := bi.Add(ctx, item); err != nil {
			return fmt.Errorf("opensearch: queuing document %s: %w", doc.ID, err)
		}
	}
	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("opensearch: flushing bulk indexer: %w", err)
	}
	if failed := bi.Stats().NumFailed; failed > 0 {
		return fmt.Errorf("opensearch: %d of %d documents failed to index into %s",
			failed, len(docs), index)
	}
	ix.logger.Info("bulk indexed documents",
		logging.String("index", index), logging.Int("count", len(docs)))
	return nil
}

// SwapAlias atomically points alias at newIndex, removing it from every
// index it previously pointed at.
func (ix *Indexer) SwapAlias(ctx context.Context, alias, newIndex string) error {
	actions := map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{
				"remove": map[string]interface{}{"index": alias + "-*", "alias": alias},
			},
			map[string]interface{}{
				"add": map[string]interface{}{"index": newIndex, "alias": alias},
			},
		},
	}
	body, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("opensearch: encoding alias actions: %w", err)
	}

	ctx, cancel := ix.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.IndicesUpdateAliasesRequest{Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, ix.client.os)
	if err != nil {
		return fmt.Errorf("opensearch: swapping alias %s: %w", alias, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		// The remove action fails when no index currently carries the
		// alias; retry with only the add action.
		if res.StatusCode == 404 {
			return ix.addAlias(ctx, alias, newIndex)
		}
		return fmt.Errorf("opensearch: swapping alias %s returned status %s", alias, res.Status())
	}
	ix.logger.Info("alias swapped",
		logging.String("alias", alias), logging.String("index", newIndex))
	return nil
}

func (ix *Indexer) addAlias(ctx context.Context, alias, index string) error {
	actions := map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{
				"add": map[string]interface{}{"index": index, "alias": alias},
			},
		},
	}
	body, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("opensearch: encoding alias actions: %w", err)
	}
	req := opensearchapi.IndicesUpdateAliasesRequest{Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, ix.client.os)
	if err != nil {
		return fmt.Errorf("opensearch: adding alias %s: %w", alias, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("opensearch: adding alias %s returned status %s", alias, res.Status())
	}
	return nil
}

// ListAliasIndices returns the concrete indices the alias currently points
// at, used by reindex runs to prune superseded generations.
func (ix *Indexer) ListAliasIndices(ctx context.Context, alias string) ([]string, error) {
	ctx, cancel := ix.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.IndicesGetAliasRequest{Name: []string{alias}}
	res, err := req.Do(ctx, ix.client.os)
	if err != nil {
		return nil, fmt.Errorf("opensearch: listing alias %s: %w", alias, err)
	}
	defer res.Body.Close()
	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("opensearch: listing alias %s returned status %s", alias, res.Status())
	}

	var parsed map[string]json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("opensearch: decoding alias listing: %w", err)
	}
	indices := make([]string, 0, len(parsed))
	for idx := range parsed {
		indices = append(indices, idx)
	}
	return indices, nil
}

// TimestampedIndexName derives the concrete index name for a reindex run,
// e.g. "company-products-20260831".
func TimestampedIndexName(alias, yyyymmdd string) string {
	return strings.Join([]string{alias, yyyymmdd}, "-")
}
