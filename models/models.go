package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Marketplace identifies a scraped competitor site.
type Marketplace string

const (
	MarketplaceMedsGo  Marketplace = "medsgo"
	MarketplaceWatsons Marketplace = "watsons"
)

// Listing is one product observation scraped from a marketplace at a point
// in time. It is read-only to the matching/aggregation pipeline.
type Listing struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Brand           string      `json:"brand,omitempty"`
	Dosage          string      `json:"dosage,omitempty"`
	Quantity        int         `json:"quantity,omitempty"`
	PricePerUnit    float64     `json:"price_per_unit,omitempty"`
	Price           float64     `json:"price"`
	OriginalPrice   float64     `json:"original_price,omitempty"`
	DiscountPercent int         `json:"discount_percent,omitempty"`
	Currency        string      `json:"currency"`
	URL             string      `json:"url"`
	ImageURL        string      `json:"image_url,omitempty"`
	InStock         bool        `json:"in_stock"`
	Marketplace     Marketplace `json:"marketplace"`
	ScrapedAt       time.Time   `json:"scraped_at"`
}

// UnitPrice returns the per-unit price when it has been derived, falling
// back to the pack price otherwise.
func (l *Listing) UnitPrice() float64 {
	if l.PricePerUnit > 0 {
		return l.PricePerUnit
	}
	return l.Price
}

// PackSize returns the extracted pack quantity, treating an unknown
// quantity as a single unit.
func (l *Listing) PackSize() int {
	if l.Quantity > 0 {
		return l.Quantity
	}
	return 1
}

// ComparisonGroup is a bucket of listings from both marketplaces believed
// to represent the same underlying product (same ingredient and dosage).
// A nil marketplace entry means that source had no matching listing;
// PriceDiff/PriceDiffPercent are only set when both entries are present.
type ComparisonGroup struct {
	Ingredient       string      `json:"ingredient"`
	Dosage           string      `json:"dosage"`
	MedsGo           *Listing    `json:"medsgo,omitempty"`
	Watsons          *Listing    `json:"watsons,omitempty"`
	PriceDiff        *float64    `json:"price_diff,omitempty"`
	PriceDiffPercent *float64    `json:"price_diff_percent,omitempty"`
	Cheapest         Marketplace `json:"cheapest,omitempty"`
	MarketAverage    float64     `json:"market_average,omitempty"`
}

// Key returns the bucket key for the group.
func (g *ComparisonGroup) Key() string {
	return g.Ingredient + "-" + g.Dosage
}

// Comparable reports whether both marketplaces contributed a listing.
func (g *ComparisonGroup) Comparable() bool {
	return g.MedsGo != nil && g.Watsons != nil
}

// MatchedPair is the result of token-overlap pairing across the two
// catalogs. B is nil for an unpaired source-A listing and A is nil for a
// leftover source-B listing.
type MatchedPair struct {
	A     *Listing `json:"a,omitempty"`
	B     *Listing `json:"b,omitempty"`
	Score int      `json:"score"`
}

// AlertType classifies a scan alert.
type AlertType string

const (
	AlertDiscount   AlertType = "discount"
	AlertCheapest   AlertType = "cheapest"
	AlertPriceDrop  AlertType = "price_drop"
	AlertOutOfStock AlertType = "out_of_stock"
)

// AlertSeverity is the display severity of an alert.
type AlertSeverity string

const (
	SeverityInfo    AlertSeverity = "info"
	SeverityWarning AlertSeverity = "warning"
	SeveritySuccess AlertSeverity = "success"
)

// Alert is a per-scan advisory for the operator. Alerts are regenerated on
// every scan and are not persisted.
type Alert struct {
	Type     AlertType     `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
	Action   string        `json:"action,omitempty"`
	Listing  *Listing      `json:"listing,omitempty"`
}

// MarketStats summarizes the comparable groups of one scan.
type MarketStats struct {
	TotalComparable  int         `json:"total_comparable"`
	MedsGoWins       int         `json:"medsgo_wins"`
	WatsonsWins      int         `json:"watsons_wins"`
	AvgMedsGoPrice   float64     `json:"avg_medsgo_price"`
	AvgWatsonsPrice  float64     `json:"avg_watsons_price"`
	OverallCheaper   Marketplace `json:"overall_cheaper"`
	PriceDiffPercent float64     `json:"price_diff_percent"`
}

// Competitor is a monitored marketplace as stored in the database.
type Competitor struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Marketplace Marketplace `json:"marketplace" db:"marketplace"`
	BaseURL     string      `json:"base_url" db:"base_url"`
	CategoryURL string      `json:"category_url" db:"category_url"`
	Enabled     bool        `json:"enabled" db:"enabled"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Product is a competitor product known to the database, identified by its
// source URL (the stable natural key across scans).
type Product struct {
	ID           int       `json:"id" db:"id"`
	CompetitorID int       `json:"competitor_id" db:"competitor_id"`
	Name         string    `json:"name" db:"name"`
	Brand        string    `json:"brand" db:"brand"`
	Dosage       string    `json:"dosage" db:"dosage"`
	URL          string    `json:"url" db:"url"`
	ExternalID   string    `json:"external_id" db:"external_id"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PricePoint is one persisted price observation. At most one point exists
// per (product, calendar day); a rescrape on the same day overwrites the
// day's point instead of appending.
type PricePoint struct {
	ID              int             `json:"id" db:"id"`
	ProductID       int             `json:"product_id" db:"product_id"`
	Price           float64         `json:"price" db:"price"`
	OriginalPrice   sql.NullFloat64 `json:"original_price" db:"original_price"`
	DiscountPercent sql.NullInt64   `json:"discount_percent" db:"discount_percent"`
	Currency        string          `json:"currency" db:"currency"`
	InStock         bool            `json:"in_stock" db:"in_stock"`
	ScrapedAt       time.Time       `json:"scraped_at" db:"scraped_at"`
	ScrapedDate     string          `json:"scraped_date" db:"scraped_date"`
}

// MarshalJSON renders the nullable columns as plain values or null.
func (p *PricePoint) MarshalJSON() ([]byte, error) {
	type Alias PricePoint
	return json.Marshal(&struct {
		*Alias
		OriginalPrice   *float64 `json:"original_price"`
		DiscountPercent *int64   `json:"discount_percent"`
	}{
		Alias:           (*Alias)(p),
		OriginalPrice:   p.originalPricePtr(),
		DiscountPercent: p.discountPercentPtr(),
	})
}

func (p *PricePoint) originalPricePtr() *float64 {
	if p.OriginalPrice.Valid {
		v := p.OriginalPrice.Float64
		return &v
	}
	return nil
}

func (p *PricePoint) discountPercentPtr() *int64 {
	if p.DiscountPercent.Valid {
		v := p.DiscountPercent.Int64
		return &v
	}
	return nil
}

// MarketplaceResult reports the outcome of scraping one marketplace during
// a scan.
type MarketplaceResult struct {
	Marketplace     Marketplace `json:"marketplace"`
	ProductsScraped int         `json:"products_scraped"`
	SavedToDB       int         `json:"saved_to_db"`
	FromCache       bool        `json:"from_cache,omitempty"`
	Errors          []string    `json:"errors,omitempty"`
	Duration        string      `json:"duration"`
}

// ScanResult is the full outcome of one scan pass: raw listings, matched
// comparison groups, alerts, and market statistics.
type ScanResult struct {
	Success       bool                `json:"success"`
	Results       []MarketplaceResult `json:"results"`
	TotalProducts int                 `json:"total_products"`
	Listings      []Listing           `json:"listings,omitempty"`
	Groups        []ComparisonGroup   `json:"groups"`
	Alerts        []Alert             `json:"alerts"`
	Stats         *MarketStats        `json:"stats,omitempty"`
	ScannedAt     time.Time           `json:"scanned_at"`
}

// BackfillResult reports synthetic-history generation across products.
type BackfillResult struct {
	ProductsProcessed int      `json:"products_processed"`
	TotalCreated      int      `json:"total_created"`
	Errors            []string `json:"errors,omitempty"`
}
