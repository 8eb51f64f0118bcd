package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pricingradar/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// UpsertCompetitor inserts or updates a competitor keyed by marketplace.
func (r *ProductRepository) UpsertCompetitor(c models.Competitor) (*models.Competitor, error) {
	query := `
		INSERT INTO competitors (name, marketplace, base_url, category_url, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (marketplace) DO UPDATE
		SET name = EXCLUDED.name, base_url = EXCLUDED.base_url, category_url = EXCLUDED.category_url,
		    enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at
		RETURNING id, name, marketplace, base_url, category_url, enabled, created_at, updated_at
	`

	var out models.Competitor
	now := time.Now()
	err := r.db.QueryRow(query, c.Name, c.Marketplace, c.BaseURL, c.CategoryURL, c.Enabled, now).Scan(
		&out.ID, &out.Name, &out.Marketplace, &out.BaseURL, &out.CategoryURL,
		&out.Enabled, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert competitor: %v", err)
	}

	return &out, nil
}

// GetCompetitorByMarketplace returns the competitor for a marketplace, or
// nil when none is registered yet.
func (r *ProductRepository) GetCompetitorByMarketplace(marketplace models.Marketplace) (*models.Competitor, error) {
	query := `
		SELECT id, name, marketplace, base_url, category_url, enabled, created_at, updated_at
		FROM competitors
		WHERE marketplace = $1
	`

	var c models.Competitor
	err := r.db.QueryRow(query, marketplace).Scan(
		&c.ID, &c.Name, &c.Marketplace, &c.BaseURL, &c.CategoryURL,
		&c.Enabled, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get competitor: %v", err)
	}

	return &c, nil
}

// UpsertProduct inserts or updates a product keyed by its source URL, the
// stable natural key across scans, and returns the stored row.
func (r *ProductRepository) UpsertProduct(p models.Product) (*models.Product, error) {
	query := `
		INSERT INTO products (competitor_id, name, brand, dosage, url, external_id, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (url) DO UPDATE
		SET name = EXCLUDED.name, brand = EXCLUDED.brand, dosage = EXCLUDED.dosage,
		    external_id = EXCLUDED.external_id, image_url = EXCLUDED.image_url, updated_at = EXCLUDED.updated_at
		RETURNING id, competitor_id, name, brand, dosage, url, external_id, image_url, created_at, updated_at
	`

	var out models.Product
	now := time.Now()
	err := r.db.QueryRow(query, p.CompetitorID, p.Name, p.Brand, p.Dosage, p.URL, p.ExternalID, p.ImageURL, now).Scan(
		&out.ID, &out.CompetitorID, &out.Name, &out.Brand, &out.Dosage,
		&out.URL, &out.ExternalID, &out.ImageURL, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert product: %v", err)
	}

	return &out, nil
}

// GetProducts returns all known products
func (r *ProductRepository) GetProducts() ([]models.Product, error) {
	query := `
		SELECT id, competitor_id, name, brand, dosage, url, external_id, image_url, created_at, updated_at
		FROM products
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %v", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.CompetitorID, &p.Name, &p.Brand, &p.Dosage,
			&p.URL, &p.ExternalID, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %v", err)
		}
		products = append(products, p)
	}

	return products, nil
}

// GetProductByID returns a product by ID
func (r *ProductRepository) GetProductByID(id int) (*models.Product, error) {
	query := `
		SELECT id, competitor_id, name, brand, dosage, url, external_id, image_url, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p models.Product
	err := r.db.QueryRow(query, id).Scan(
		&p.ID, &p.CompetitorID, &p.Name, &p.Brand, &p.Dosage,
		&p.URL, &p.ExternalID, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %v", err)
	}

	return &p, nil
}
