package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// Connect opens the Postgres connection from the given URL and verifies
// it. The returned handle is passed explicitly to the repositories; no
// package-level connection state is kept.
func Connect(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return db, nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS competitors (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			marketplace VARCHAR(20) NOT NULL UNIQUE,
			base_url TEXT NOT NULL,
			category_url TEXT NOT NULL,
			enabled BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			competitor_id INTEGER REFERENCES competitors(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			brand TEXT DEFAULT '',
			dosage TEXT DEFAULT '',
			url TEXT NOT NULL UNIQUE,
			external_id TEXT DEFAULT '',
			image_url TEXT DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id SERIAL PRIMARY KEY,
			product_id INTEGER REFERENCES products(id) ON DELETE CASCADE,
			price DECIMAL(10,2) NOT NULL,
			original_price DECIMAL(10,2),
			discount_percent INTEGER,
			currency VARCHAR(3) DEFAULT 'PHP',
			in_stock BOOLEAN DEFAULT TRUE,
			scraped_at TIMESTAMP NOT NULL,
			scraped_date DATE NOT NULL,
			UNIQUE (product_id, scraped_date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_products_competitor ON products (competitor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history (product_id, scraped_at DESC)`,
	}

	for _, query := range queries {
		_, err := db.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}
