package cache

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"pricingradar/models"
)

// Cache keeps the most recent scrape of each marketplace in a local sqlite
// file so repeat scan requests inside the TTL do not hammer the sites.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// New opens (and if needed creates) the cache database at dbPath.
func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			marketplace TEXT NOT NULL,
			data TEXT NOT NULL,
			scraped_at DATETIME NOT NULL,
			PRIMARY KEY (marketplace)
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, ttl: ttl}, nil
}

// Get returns the cached listings for a marketplace when a fresh entry
// exists.
func (c *Cache) Get(marketplace models.Marketplace) ([]models.Listing, bool) {
	var data string
	var scrapedAt time.Time

	err := c.db.QueryRow(
		`SELECT data, scraped_at FROM scans WHERE marketplace = ?`,
		string(marketplace),
	).Scan(&data, &scrapedAt)
	if err != nil {
		return nil, false
	}

	if time.Since(scrapedAt) > c.ttl {
		return nil, false
	}

	var listings []models.Listing
	if err := json.Unmarshal([]byte(data), &listings); err != nil {
		log.Printf("Cache: failed to unmarshal listings for %s: %v", marketplace, err)
		return nil, false
	}

	return listings, true
}

// Set stores the latest scrape for a marketplace, replacing any previous
// entry.
func (c *Cache) Set(marketplace models.Marketplace, listings []models.Listing) {
	data, err := json.Marshal(listings)
	if err != nil {
		log.Printf("Cache: failed to marshal listings for %s: %v", marketplace, err)
		return
	}

	_, err = c.db.Exec(
		`INSERT INTO scans (marketplace, data, scraped_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(marketplace)
		 DO UPDATE SET data = excluded.data, scraped_at = excluded.scraped_at`,
		string(marketplace), string(data), time.Now(),
	)
	if err != nil {
		log.Printf("Cache: failed to store listings for %s: %v", marketplace, err)
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
