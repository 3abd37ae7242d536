// Package catalog provides the file-backed Catalog implementation.  It loads
// the patent and company JSON datasets into memory at construction and
// serves lookups from maps, which keeps local development and tests free of
// an OpenSearch dependency.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	domaincatalog "github.com/patlytics/patlytics/internal/domain/catalog"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// FileCatalog serves catalog lookups from JSON files loaded at startup.
type FileCatalog struct {
	patents   map[string]domaincatalog.PatentRecord
	companies map[string]domaincatalog.CompanyProfile
	// names and patentIDs preserve the dataset order for deterministic
	// listings.
	names     []string
	patentIDs []string
}

var _ domaincatalog.Catalog = (*FileCatalog)(nil)

// patentID tolerates both numeric and string ids in the dataset.
type patentID string

func (p *patentID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = patentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = patentID(n.String())
	return nil
}

type patentsFile struct {
	Patents []struct {
		ID                patentID `json:"id"`
		PublicationNumber string   `json:"publication_number"`
		Title             string   `json:"title"`
		Claims            []string `json:"claims"`
	} `json:"patents"`
}

type companiesFile struct {
	Companies []domaincatalog.CompanyProfile `json:"companies"`
}

// NewFileCatalog loads both datasets and returns a ready catalog.
func NewFileCatalog(patentsPath, companiesPath string) (*FileCatalog, error) {
	fc := &FileCatalog{
		patents:   make(map[string]domaincatalog.PatentRecord),
		companies: make(map[string]domaincatalog.CompanyProfile),
	}
	if err := fc.loadPatents(patentsPath); err != nil {
		return nil, err
	}
	if err := fc.loadCompanies(companiesPath); err != nil {
		return nil, err
	}
	return fc, nil
}

func (fc *FileCatalog) loadPatents(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: reading patents file %s: %w", path, err)
	}
	var pf patentsFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("catalog: parsing patents file %s: %w", path, err)
	}
	for _, p := range pf.Patents {
		id := string(p.ID)
		fc.patents[id] = domaincatalog.PatentRecord{
			PatentID:          id,
			PublicationNumber: p.PublicationNumber,
			Title:             p.Title,
			Claims:            p.Claims,
		}
		fc.patentIDs = append(fc.patentIDs, id)
	}
	return nil
}

func (fc *FileCatalog) loadCompanies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("catalog: reading companies file %s: %w", path, err)
	}
	var cf companiesFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("catalog: parsing companies file %s: %w", path, err)
	}
	for _, c := range cf.Companies {
		fc.companies[c.Name] = c
		fc.names = append(fc.names, c.Name)
	}
	return nil
}

func (fc *FileCatalog) GetPatent(_ context.Context, patentID string) (*domaincatalog.PatentRecord, error) {
	p, ok := fc.patents[patentID]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodePatentNotFound, "patent %s not found", patentID)
	}
	return &p, nil
}

func (fc *FileCatalog) GetCompany(_ context.Context, name string) (*domaincatalog.CompanyProfile, error) {
	c, ok := fc.companies[name]
	if !ok {
		return nil, apperrors.Newf(apperrors.ErrCodeCompanyNotFound, "company %q not found", name)
	}
	return &c, nil
}

func (fc *FileCatalog) ListCompanyNames(_ context.Context) ([]string, error) {
	out := make([]string, len(fc.names))
	copy(out, fc.names)
	return out, nil
}

// ListPatentIDs returns every patent id in dataset order.  Reindex runs use
// it to enumerate the corpus.
func (fc *FileCatalog) ListPatentIDs(_ context.Context) ([]string, error) {
	out := make([]string, len(fc.patentIDs))
	copy(out, fc.patentIDs)
	return out, nil
}
