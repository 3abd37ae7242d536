package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/patlytics/patlytics/internal/config"
	"github.com/patlytics/patlytics/internal/domain/catalog"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// Searcher executes the read-side queries against the company and patent
// indices.  The resolver configuration supplies the fuzzy query knobs.
type Searcher struct {
	client   *Client
	resolver config.ResolverConfig
}

// NewSearcher returns a Searcher bound to the given client.
func NewSearcher(client *Client, resolver config.ResolverConfig) *Searcher {
	return &Searcher{client: client, resolver: resolver}
}

var _ catalog.CompanySearcher = (*Searcher)(nil)

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Score  float64         `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FuzzySearchCompanies runs the two-clause fuzzy query against the company
// index: an edit-distance fuzzy clause plus a boosted exact-analysis match
// clause, with hits below the configured minimum score discarded by the
// engine.  Results arrive in descending relevance order.
//
// Transport, timeout, and non-2xx failures are reported as resolution
// unavailability so the caller can fall back to local matching.
func (s *Searcher) FuzzySearchCompanies(ctx context.Context, name string, size int) ([]catalog.ScoredCompany, error) {
	query := map[string]interface{}{
		"size":      size,
		"min_score": s.resolver.MinScore,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []interface{}{
					map[string]interface{}{
						"fuzzy": map[string]interface{}{
							"name": map[string]interface{}{
								"value":         name,
								"fuzziness":     s.resolver.Fuzziness,
								"prefix_length": s.resolver.PrefixLength,
							},
						},
					},
					map[string]interface{}{
						"match": map[string]interface{}{
							"name": map[string]interface{}{
								"query": name,
								"boost": 2.0,
							},
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encoding company search query")
	}

	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.cfg.CompanyIndex},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client.os)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeResolutionUnavailable, "company index search")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.Newf(apperrors.ErrCodeResolutionUnavailable,
			"company index search returned status %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding company search response")
	}

	hits := make([]catalog.ScoredCompany, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		var profile catalog.CompanyProfile
		if err := json.Unmarshal(h.Source, &profile); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding company document")
		}
		hits = append(hits, catalog.ScoredCompany{Profile: profile, Score: h.Score})
	}
	return hits, nil
}

// GetPatentByID fetches a patent document by its numeric document id.
func (s *Searcher) GetPatentByID(ctx context.Context, patentID string) (*catalog.PatentRecord, error) {
	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.GetRequest{
		Index:      s.client.cfg.PatentIndex,
		DocumentID: patentID,
	}
	res, err := req.Do(ctx, s.client.os)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCatalogUnavailable, "patent lookup")
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, apperrors.Newf(apperrors.ErrCodePatentNotFound, "patent %s not found", patentID)
	}
	if res.IsError() {
		return nil, apperrors.Newf(apperrors.ErrCodeCatalogUnavailable,
			"patent lookup returned status %s", res.Status())
	}

	var doc struct {
		Source catalog.PatentRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding patent document")
	}
	record := doc.Source
	if record.PatentID == "" {
		record.PatentID = patentID
	}
	return &record, nil
}

// GetCompanyByName fetches a company document by exact, case-sensitive name.
func (s *Searcher) GetCompanyByName(ctx context.Context, name string) (*catalog.CompanyProfile, error) {
	query := map[string]interface{}{
		"size": 1,
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				"name.keyword": name,
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encoding company lookup query")
	}

	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.cfg.CompanyIndex},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client.os)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCatalogUnavailable, "company lookup")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.Newf(apperrors.ErrCodeCatalogUnavailable,
			"company lookup returned status %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding company lookup response")
	}
	if len(parsed.Hits.Hits) == 0 {
		return nil, apperrors.Newf(apperrors.ErrCodeCompanyNotFound, "company %q not found", name)
	}
	var profile catalog.CompanyProfile
	if err := json.Unmarshal(parsed.Hits.Hits[0].Source, &profile); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding company document")
	}
	return &profile, nil
}

// ListCompanyNames scrolls the company index and returns every company name.
// The directory is small enough that a single large page suffices.
func (s *Searcher) ListCompanyNames(ctx context.Context) ([]string, error) {
	query := map[string]interface{}{
		"size":    10000,
		"_source": []string{"name"},
		"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "encoding company listing query")
	}

	ctx, cancel := s.client.withTimeout(ctx)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.cfg.CompanyIndex},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client.os)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeCatalogUnavailable, "company listing")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, apperrors.Newf(apperrors.ErrCodeCatalogUnavailable,
			"company listing returned status %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding company listing response")
	}
	names := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		var doc struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeSerialization, "decoding company name")
		}
		if doc.Name != "" {
			names = append(names, doc.Name)
		}
	}
	return names, nil
}

