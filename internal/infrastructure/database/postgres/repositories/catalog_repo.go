package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patlytics/patlytics/internal/domain/catalog"
	apperrors "github.com/patlytics/patlytics/pkg/errors"
)

// CatalogRepository reads the patent and company datasets out of the
// relational schema.  Reindex runs use it to feed the search indices from
// the database of record.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository backed by the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListPatents returns every patent with its ordered claims.
func (r *CatalogRepository) ListPatents(ctx context.Context) ([]catalog.PatentRecord, error) {
	const q = `
		SELECT patent_id, publication_number, title, claims
		FROM patents
		ORDER BY patent_id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "listing patents")
	}
	defer rows.Close()

	var out []catalog.PatentRecord
	for rows.Next() {
		var p catalog.PatentRecord
		if err := rows.Scan(&p.PatentID, &p.PublicationNumber, &p.Title, &p.Claims); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scanning patent")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterating patents")
	}
	return out, nil
}

// ListCompanyProfiles returns every company with its product portfolio.
func (r *CatalogRepository) ListCompanyProfiles(ctx context.Context) ([]catalog.CompanyProfile, error) {
	const q = `
		SELECT c.name, p.name, p.description
		FROM companies c
		LEFT JOIN company_product cp ON cp.company_id = c.id
		LEFT JOIN products p ON p.id = cp.product_id
		ORDER BY c.name, p.name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "listing companies")
	}
	defer rows.Close()

	var out []catalog.CompanyProfile
	index := make(map[string]int)
	for rows.Next() {
		var companyName string
		var productName, productDesc *string
		if err := rows.Scan(&companyName, &productName, &productDesc); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "scanning company row")
		}
		i, ok := index[companyName]
		if !ok {
			i = len(out)
			index[companyName] = i
			out = append(out, catalog.CompanyProfile{Name: companyName})
		}
		if productName != nil {
			desc := ""
			if productDesc != nil {
				desc = *productDesc
			}
			out[i].Products = append(out[i].Products, catalog.Product{
				Name:        *productName,
				Description: desc,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "iterating companies")
	}
	return out, nil
}

// ImportPatents upserts the given patents in one transaction.  A rerun with
// the same dataset replaces titles and claims in place.
func (r *CatalogRepository) ImportPatents(ctx context.Context, patents []catalog.PatentRecord) error {
	const q = `
		INSERT INTO patents (patent_id, publication_number, title, claims)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (patent_id) DO UPDATE
		SET publication_number = EXCLUDED.publication_number,
		    title              = EXCLUDED.title,
		    claims             = EXCLUDED.claims`
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, p := range patents {
			if _, err := tx.Exec(ctx, q, p.PatentID, p.PublicationNumber, p.Title, p.Claims); err != nil {
				return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError,
					"importing patent %s", p.PatentID)
			}
		}
		return nil
	})
}

// ImportCompanies upserts companies and their product portfolios in one
// transaction.  Each company's product links are rebuilt from the dataset;
// product rows are shared by name+description across companies.
func (r *CatalogRepository) ImportCompanies(ctx context.Context, companies []catalog.CompanyProfile) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, c := range companies {
			var companyID string
			err := tx.QueryRow(ctx, `
				INSERT INTO companies (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id`, c.Name).Scan(&companyID)
			if err != nil {
				return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError,
					"importing company %s", c.Name)
			}
			if _, err := tx.Exec(ctx,
				`DELETE FROM company_product WHERE company_id = $1`, companyID); err != nil {
				return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError,
					"clearing products of %s", c.Name)
			}
			for _, p := range c.Products {
				var productID string
				err := tx.QueryRow(ctx, `
					SELECT id FROM products WHERE name = $1 AND description = $2`,
					p.Name, p.Description).Scan(&productID)
				if isNoRows(err) {
					err = tx.QueryRow(ctx, `
						INSERT INTO products (name, description) VALUES ($1, $2)
						RETURNING id`, p.Name, p.Description).Scan(&productID)
				}
				if err != nil {
					return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError,
						"importing product %s", p.Name)
				}
				if _, err := tx.Exec(ctx, `
					INSERT INTO company_product (company_id, product_id) VALUES ($1, $2)
					ON CONFLICT DO NOTHING`, companyID, productID); err != nil {
					return apperrors.Wrapf(err, apperrors.ErrCodeDatabaseError,
						"linking product %s to %s", p.Name, c.Name)
				}
			}
		}
		return nil
	})
}
