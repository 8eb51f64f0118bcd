package services

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"pricingradar/aggregator"
	"pricingradar/config"
	"pricingradar/matcher"
	"pricingradar/models"
	"pricingradar/repository"
	"pricingradar/scraper"
)

// Store is the persistence surface the scan service needs. It is satisfied
// by RepositoryStore in production and by an in-memory fake in tests.
type Store interface {
	UpsertCompetitor(c models.Competitor) (*models.Competitor, error)
	UpsertProduct(p models.Product) (*models.Product, error)
	GetProducts() ([]models.Product, error)
	AddPricePoint(productID int, point models.PricePoint) error
	GetLatestPoint(productID int) (*models.PricePoint, error)
	Backfill(productID int, currentPrice float64, days int) (int, []string)
}

// RepositoryStore implements Store on top of the postgres repositories.
type RepositoryStore struct {
	Products *repository.ProductRepository
	History  *repository.HistoryRepository
}

func (s *RepositoryStore) UpsertCompetitor(c models.Competitor) (*models.Competitor, error) {
	return s.Products.UpsertCompetitor(c)
}

func (s *RepositoryStore) UpsertProduct(p models.Product) (*models.Product, error) {
	return s.Products.UpsertProduct(p)
}

func (s *RepositoryStore) GetProducts() ([]models.Product, error) {
	return s.Products.GetProducts()
}

func (s *RepositoryStore) AddPricePoint(productID int, point models.PricePoint) error {
	return s.History.AddPricePoint(productID, point)
}

func (s *RepositoryStore) GetLatestPoint(productID int) (*models.PricePoint, error) {
	return s.History.GetLatestPoint(productID)
}

func (s *RepositoryStore) Backfill(productID int, currentPrice float64, days int) (int, []string) {
	return s.History.Backfill(productID, currentPrice, days)
}

// ListingCache caches per-marketplace scrape results between scans.
type ListingCache interface {
	Get(marketplace models.Marketplace) ([]models.Listing, bool)
	Set(marketplace models.Marketplace, listings []models.Listing)
}

// ScanService orchestrates a full market scan: scrape both marketplaces,
// persist every observation, then match and aggregate the combined catalog.
type ScanService struct {
	scrapers     []scraper.MarketplaceScraper
	configs      map[models.Marketplace]config.MarketplaceConfig
	store        Store
	cache        ListingCache
	thresholds   aggregator.Thresholds
	backfillDays int
}

// NewScanService wires the scan pipeline together. cache may be nil to
// disable caching.
func NewScanService(scrapers []scraper.MarketplaceScraper, configs map[models.Marketplace]config.MarketplaceConfig, store Store, cache ListingCache, thresholds aggregator.Thresholds, backfillDays int) *ScanService {
	return &ScanService{
		scrapers:     scrapers,
		configs:      configs,
		store:        store,
		cache:        cache,
		thresholds:   thresholds,
		backfillDays: backfillDays,
	}
}

// Scan runs one scan pass. marketplace narrows the scan to a single site;
// empty scans everything. force bypasses the scrape cache. One failing
// marketplace does not abort the scan: its error is recorded and the other
// side still gets scraped, persisted and (one-sided) grouped.
func (s *ScanService) Scan(marketplace models.Marketplace, force bool) (*models.ScanResult, error) {
	result := &models.ScanResult{ScannedAt: time.Now()}

	var all []models.Listing
	for _, sc := range s.scrapers {
		if marketplace != "" && sc.Marketplace() != marketplace {
			continue
		}

		mr := s.scanMarketplace(sc, force)
		result.Results = append(result.Results, mr.result)
		all = append(all, mr.listings...)
	}

	if len(result.Results) == 0 {
		return nil, fmt.Errorf("unknown marketplace: %s", marketplace)
	}

	result.Listings = all
	result.TotalProducts = len(all)
	result.Groups = matcher.Group(all)
	result.Alerts = aggregator.BuildAlerts(all, result.Groups, s.thresholds)
	result.Stats = aggregator.ComputeMarketStats(result.Groups)
	result.Success = len(all) > 0

	log.Printf("Scan complete: %d listings, %d groups, %d alerts", result.TotalProducts, len(result.Groups), len(result.Alerts))
	return result, nil
}

type marketplaceScan struct {
	result   models.MarketplaceResult
	listings []models.Listing
}

func (s *ScanService) scanMarketplace(sc scraper.MarketplaceScraper, force bool) marketplaceScan {
	mp := sc.Marketplace()
	start := time.Now()
	mr := models.MarketplaceResult{Marketplace: mp}

	var listings []models.Listing
	if s.cache != nil && !force {
		if cached, ok := s.cache.Get(mp); ok {
			log.Printf("Using cached listings for %s (%d products)", mp, len(cached))
			listings = cached
			mr.FromCache = true
		}
	}

	if listings == nil {
		scraped, err := sc.Scrape()
		if err != nil {
			log.Printf("❌ Scrape failed for %s: %v", mp, err)
			mr.Errors = append(mr.Errors, err.Error())
			mr.Duration = time.Since(start).String()
			return marketplaceScan{result: mr}
		}
		listings = scraped
		if s.cache != nil {
			s.cache.Set(mp, listings)
		}
	}

	mr.ProductsScraped = len(listings)
	mr.SavedToDB, mr.Errors = s.persist(mp, listings, mr.Errors)
	mr.Duration = time.Since(start).String()
	return marketplaceScan{result: mr, listings: listings}
}

// persist writes one scrape into the database. A failure on one listing is
// logged and recorded but never stops the rest of the batch.
func (s *ScanService) persist(mp models.Marketplace, listings []models.Listing, errs []string) (int, []string) {
	cfg, ok := s.configs[mp]
	if !ok {
		cfg = config.MarketplaceConfig{Marketplace: mp, Name: string(mp)}
	}

	competitor, err := s.store.UpsertCompetitor(models.Competitor{
		Name:        cfg.Name,
		Marketplace: mp,
		BaseURL:     cfg.BaseURL,
		CategoryURL: cfg.CategoryURL,
		Enabled:     true,
	})
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to upsert competitor: %v", err))
		return 0, errs
	}

	saved := 0
	for _, l := range listings {
		product, err := s.store.UpsertProduct(models.Product{
			CompetitorID: competitor.ID,
			Name:         l.Name,
			Brand:        l.Brand,
			Dosage:       l.Dosage,
			URL:          l.URL,
			ExternalID:   l.ID,
			ImageURL:     l.ImageURL,
		})
		if err != nil {
			errs = append(errs, fmt.Sprintf("failed to save %s: %v", l.Name, err))
			continue
		}

		point := models.PricePoint{
			Price:     l.Price,
			Currency:  l.Currency,
			InStock:   l.InStock,
			ScrapedAt: l.ScrapedAt,
		}
		if l.OriginalPrice > 0 {
			point.OriginalPrice = sql.NullFloat64{Float64: l.OriginalPrice, Valid: true}
		}
		if l.DiscountPercent > 0 {
			point.DiscountPercent = sql.NullInt64{Int64: int64(l.DiscountPercent), Valid: true}
		}

		if err := s.store.AddPricePoint(product.ID, point); err != nil {
			errs = append(errs, fmt.Sprintf("failed to save price for %s: %v", l.Name, err))
			continue
		}
		saved++
	}

	log.Printf("Saved %d/%d listings for %s", saved, len(listings), mp)
	return saved, errs
}

// BackfillAll generates synthetic history for every known product so the
// forecast has enough points to work with on a fresh database. Products
// without a single real observation are skipped.
func (s *ScanService) BackfillAll() (*models.BackfillResult, error) {
	products, err := s.store.GetProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %v", err)
	}

	result := &models.BackfillResult{}
	for _, p := range products {
		latest, err := s.store.GetLatestPoint(p.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product %d: %v", p.ID, err))
			continue
		}
		if latest == nil {
			continue
		}

		created, errs := s.store.Backfill(p.ID, latest.Price, s.backfillDays)
		result.ProductsProcessed++
		result.TotalCreated += created
		result.Errors = append(result.Errors, errs...)
	}

	log.Printf("Backfill complete: %d products, %d points created", result.ProductsProcessed, result.TotalCreated)
	return result, nil
}
