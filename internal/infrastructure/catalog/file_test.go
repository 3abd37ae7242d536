package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

const patentsJSON = `{
	"patents": [
		{"id": 12345, "publication_number": "US-12345-B2", "title": "Adaptive Battery Charging System",
		 "claims": ["claim one text", "claim two text"]},
		{"id": "67890", "title": "Wireless Telemetry Protocol", "claims": ["claim one"]}
	]
}`

const companiesJSON = `{
	"companies": [
		{"name": "Test Company", "products": [
			{"name": "PowerMax Charger", "description": "Fast charger."}
		]},
		{"name": "Quantum Foundry", "products": []}
	]
}`

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	patents := filepath.Join(dir, "patents.json")
	companies := filepath.Join(dir, "company_products.json")
	require.NoError(t, os.WriteFile(patents, []byte(patentsJSON), 0o644))
	require.NoError(t, os.WriteFile(companies, []byte(companiesJSON), 0o644))
	return patents, companies
}

func TestFileCatalogLookups(t *testing.T) {
	patents, companies := writeFixtures(t)
	fc, err := NewFileCatalog(patents, companies)
	require.NoError(t, err)
	ctx := context.Background()

	// Numeric and string ids in the dataset both resolve by string key.
	p, err := fc.GetPatent(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, "Adaptive Battery Charging System", p.Title)
	assert.Equal(t, []string{"claim one text", "claim two text"}, p.Claims)

	p, err = fc.GetPatent(ctx, "67890")
	require.NoError(t, err)
	assert.Equal(t, "Wireless Telemetry Protocol", p.Title)

	c, err := fc.GetCompany(ctx, "Test Company")
	require.NoError(t, err)
	require.Len(t, c.Products, 1)
	assert.Equal(t, "PowerMax Charger", c.Products[0].Name)
}

func TestFileCatalogNotFound(t *testing.T) {
	patents, companies := writeFixtures(t)
	fc, err := NewFileCatalog(patents, companies)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = fc.GetPatent(ctx, "99999")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePatentNotFound))

	// Company lookup is exact and case-sensitive.
	_, err = fc.GetCompany(ctx, "test company")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCompanyNotFound))
}

func TestFileCatalogListings(t *testing.T) {
	patents, companies := writeFixtures(t)
	fc, err := NewFileCatalog(patents, companies)
	require.NoError(t, err)
	ctx := context.Background()

	names, err := fc.ListCompanyNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Test Company", "Quantum Foundry"}, names)

	ids, err := fc.ListPatentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"12345", "67890"}, ids)
}

func TestFileCatalogMissingFile(t *testing.T) {
	_, companies := writeFixtures(t)
	_, err := NewFileCatalog("/nonexistent/patents.json", companies)
	require.Error(t, err)
}

func TestFileCatalogMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "patents.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, companies := writeFixtures(t)

	_, err := NewFileCatalog(bad, companies)
	require.Error(t, err)
}
