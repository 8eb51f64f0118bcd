package scraper

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"

	"pricingradar/config"
	"pricingradar/models"
)

// MedsGoScraper scrapes the MedsGo category page. The site is server
// rendered, so a plain HTTP collector is enough.
type MedsGoScraper struct {
	cfg config.MarketplaceConfig
}

// NewMedsGoScraper creates a scraper for the given MedsGo configuration.
func NewMedsGoScraper(cfg config.MarketplaceConfig) *MedsGoScraper {
	return &MedsGoScraper{cfg: cfg}
}

// Marketplace returns the marketplace this scraper covers.
func (s *MedsGoScraper) Marketplace() models.Marketplace {
	return s.cfg.Marketplace
}

// Scrape visits the configured category page and extracts all product
// cards. A page with no recognizable cards is treated as an error so that
// selector drift surfaces instead of silently emptying the catalog.
func (s *MedsGoScraper) Scrape() ([]models.Listing, error) {
	domains := []string{"127.0.0.1", "localhost"}
	if u, err := url.Parse(s.cfg.CategoryURL); err == nil && u.Host != "" {
		domains = append(domains, u.Host)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(domains...),
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	sel := s.cfg.Selectors
	var listings []models.Listing

	c.OnHTML(sel.ProductCard, func(e *colly.HTMLElement) {
		name := e.ChildText(sel.ProductName)
		link := e.Request.AbsoluteURL(e.ChildAttr(sel.ProductLink, "href"))
		image := e.Request.AbsoluteURL(e.ChildAttr(sel.Image, "src"))
		price := ParsePrice(e.ChildText(sel.Price))

		var originalPrice float64
		if sel.OriginalPrice != "" {
			originalPrice = ParsePrice(e.ChildText(sel.OriginalPrice))
		}

		inStock := true
		if sel.InStock != "" {
			stockText := strings.ToLower(e.ChildText(sel.InStock))
			inStock = stockText == "" || !strings.Contains(stockText, "out of stock")
		}

		listing, ok := BuildListing(s.cfg.Marketplace, name, link, image, price, originalPrice, inStock)
		if !ok {
			return
		}
		listings = append(listings, listing)
	})

	log.Printf("Scraping %s at %s", s.cfg.Name, s.cfg.CategoryURL)
	if err := c.Visit(s.cfg.CategoryURL); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %v", s.cfg.Name, err)
	}

	if len(listings) == 0 {
		return nil, fmt.Errorf("no products found on %s, selectors may be stale", s.cfg.Name)
	}

	log.Printf("✅ Scraped %d listings from %s", len(listings), s.cfg.Name)
	return listings, nil
}
