package repository

import (
	"database/sql"
	"fmt"
	"math"
	"math/rand"
	"time"

	"pricingradar/models"
)

// DefaultHistoryLimit caps history reads when no limit is given.
const DefaultHistoryLimit = 30

type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// AddPricePoint records one observation for a product. At most one row
// exists per (product, calendar day): a rescrape on the same day
// overwrites the day's price, discount, and stock fields in place.
func (r *HistoryRepository) AddPricePoint(productID int, point models.PricePoint) error {
	query := `
		INSERT INTO price_history (product_id, price, original_price, discount_percent, currency, in_stock, scraped_at, scraped_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (product_id, scraped_date) DO UPDATE
		SET price = EXCLUDED.price, original_price = EXCLUDED.original_price,
		    discount_percent = EXCLUDED.discount_percent, currency = EXCLUDED.currency,
		    in_stock = EXCLUDED.in_stock, scraped_at = EXCLUDED.scraped_at
	`

	_, err := r.db.Exec(query, productID, point.Price, point.OriginalPrice, point.DiscountPercent,
		point.Currency, point.InStock, point.ScrapedAt, DateKey(point.ScrapedAt))
	if err != nil {
		return fmt.Errorf("failed to add price point: %v", err)
	}

	return nil
}

// GetHistory returns price points for a product, most recent first.
func (r *HistoryRepository) GetHistory(productID int, limit int) ([]models.PricePoint, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, product_id, price, original_price, discount_percent, currency, in_stock, scraped_at, scraped_date
		FROM price_history
		WHERE product_id = $1
		ORDER BY scraped_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get price history: %v", err)
	}
	defer rows.Close()

	var history []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		err := rows.Scan(
			&p.ID, &p.ProductID, &p.Price, &p.OriginalPrice, &p.DiscountPercent,
			&p.Currency, &p.InStock, &p.ScrapedAt, &p.ScrapedDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price point: %v", err)
		}
		history = append(history, p)
	}

	return history, nil
}

// GetLatestPoint returns the most recent price point for a product, or
// nil when the product has no history yet.
func (r *HistoryRepository) GetLatestPoint(productID int) (*models.PricePoint, error) {
	query := `
		SELECT id, product_id, price, original_price, discount_percent, currency, in_stock, scraped_at, scraped_date
		FROM price_history
		WHERE product_id = $1
		ORDER BY scraped_at DESC
		LIMIT 1
	`

	var p models.PricePoint
	err := r.db.QueryRow(query, productID).Scan(
		&p.ID, &p.ProductID, &p.Price, &p.OriginalPrice, &p.DiscountPercent,
		&p.Currency, &p.InStock, &p.ScrapedAt, &p.ScrapedDate,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest price point: %v", err)
	}

	return &p, nil
}

// Backfill synthesizes history points for the last `days` calendar days a
// product has no observation for, at the current price with up to ±5%
// noise. Days that already have a point (real or synthetic) are skipped.
// This is a demo/cold-start helper; its output is not real market data.
func (r *HistoryRepository) Backfill(productID int, currentPrice float64, days int) (int, []string) {
	existing, err := r.existingDates(productID)
	if err != nil {
		return 0, []string{err.Error()}
	}

	created := 0
	var errors []string
	for _, date := range MissingBackfillDates(existing, time.Now(), days) {
		price := SyntheticPrice(currentPrice)

		query := `
			INSERT INTO price_history (product_id, price, currency, in_stock, scraped_at, scraped_date)
			VALUES ($1, $2, 'PHP', TRUE, $3, $4)
			ON CONFLICT (product_id, scraped_date) DO NOTHING
		`
		res, err := r.db.Exec(query, productID, price, date, DateKey(date))
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", DateKey(date), err))
			continue
		}
		// A concurrent writer may have taken the day; a suppressed
		// insert is not a created point.
		if rows, err := res.RowsAffected(); err != nil || rows == 0 {
			continue
		}
		created++
	}

	return created, errors
}

// existingDates returns the set of calendar days the product already has
// points for.
func (r *HistoryRepository) existingDates(productID int) (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT scraped_at FROM price_history WHERE product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing history dates: %v", err)
	}
	defer rows.Close()

	dates := make(map[string]bool)
	for rows.Next() {
		var scrapedAt time.Time
		if err := rows.Scan(&scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history date: %v", err)
		}
		dates[DateKey(scrapedAt)] = true
	}
	return dates, nil
}

// DateKey formats a timestamp as the UTC calendar day used for
// day-based deduplication.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// MissingBackfillDates lists the timestamps of the last `days` calendar
// days before today that are absent from the existing date set, oldest
// first.
func MissingBackfillDates(existing map[string]bool, today time.Time, days int) []time.Time {
	var missing []time.Time
	for i := days; i >= 1; i-- {
		date := today.AddDate(0, 0, -i)
		if existing[DateKey(date)] {
			continue
		}
		missing = append(missing, date)
	}
	return missing
}

// SyntheticPrice applies uniform noise in [-5%, +5%] to a price, rounded
// to two decimals.
func SyntheticPrice(current float64) float64 {
	variation := rand.Float64()*0.1 - 0.05
	return math.Round(current*(1+variation)*100) / 100
}
