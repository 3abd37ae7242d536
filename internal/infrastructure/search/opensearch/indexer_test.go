package opensearch

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/infrastructure/monitoring/logging"
)

// stubCluster serves the two endpoints BulkIndex touches: the ping and the
// bulk API.  With failAll set, every bulk item comes back rejected.
func stubCluster(t *testing.T, failAll bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/_bulk") {
			http.NotFound(w, r)
			return
		}

		// The bulk body is action-metadata and source line pairs.
		var lines int
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				lines++
			}
		}
		n := lines / 2

		items := make([]map[string]interface{}, 0, n)
		for i := 0; i < n; i++ {
			entry := map[string]interface{}{"_id": fmt.Sprint(i), "status": 201}
			if failAll {
				entry["status"] = 400
				entry["error"] = map[string]interface{}{
					"type":   "mapper_parsing_exception",
					"reason": "rejected",
				}
			}
			items = append(items, map[string]interface{}{"index": entry})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"took":   3,
			"errors": failAll,
			"items":  items,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStubbedIndexer(t *testing.T, failAll bool) *Indexer {
	t.Helper()
	srv := stubCluster(t, failAll)
	client, err := NewClient(context.Background(), config.OpenSearchConfig{
		Addresses:      []string{srv.URL},
		RequestTimeout: 5 * time.Second,
	}, logging.NewNop())
	require.NoError(t, err)
	return NewIndexer(client, logging.NewNop())
}

func testDocuments(n int) []Document {
	docs := make([]Document, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, Document{
			ID:   fmt.Sprintf("doc-%d", i),
			Body: map[string]string{"name": fmt.Sprintf("Company %d", i)},
		})
	}
	return docs
}

func TestBulkIndexAllAccepted(t *testing.T) {
	ix := newStubbedIndexer(t, false)
	err := ix.BulkIndex(context.Background(), "companies", testDocuments(3))
	assert.NoError(t, err)
}

func TestBulkIndexReportsRejectedDocuments(t *testing.T) {
	ix := newStubbedIndexer(t, true)
	err := ix.BulkIndex(context.Background(), "companies", testDocuments(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of 3 documents failed")
}
