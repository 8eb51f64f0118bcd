package scraper

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"

	"pricingradar/config"
	"pricingradar/models"
)

// WatsonsScraper scrapes the Watsons category page. Watsons renders its
// product grid client-side, so a real browser is required.
type WatsonsScraper struct {
	cfg     config.MarketplaceConfig
	browser *rod.Browser
}

// NewWatsonsScraper launches a headless browser and returns a scraper for
// the given Watsons configuration.
func NewWatsonsScraper(cfg config.MarketplaceConfig) (*WatsonsScraper, error) {
	// Configure launcher - use system Chromium in Docker, auto-detect locally
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	return &WatsonsScraper{cfg: cfg, browser: browser}, nil
}

// Marketplace returns the marketplace this scraper covers.
func (s *WatsonsScraper) Marketplace() models.Marketplace {
	return s.cfg.Marketplace
}

// Close shuts the browser down.
func (s *WatsonsScraper) Close() error {
	if s.browser == nil {
		return nil
	}
	return s.browser.Close()
}

// Scrape navigates to the configured category page, waits for the product
// grid to render and extracts every card it can read. Individual broken
// cards are skipped; an empty grid is an error.
func (s *WatsonsScraper) Scrape() ([]models.Listing, error) {
	var listings []models.Listing

	err := rod.Try(func() {
		page := s.browser.MustPage(s.cfg.CategoryURL).Timeout(60 * time.Second)
		defer page.MustClose()

		page.MustWaitLoad()

		// Lazy-loaded grid: scroll to force all cards in.
		page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		time.Sleep(2 * time.Second)
		page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		time.Sleep(1 * time.Second)

		sel := s.cfg.Selectors
		cards := page.MustElements(sel.ProductCard)
		log.Printf("Found %d product cards on %s", len(cards), s.cfg.Name)

		for _, card := range cards {
			listing, ok := s.extractCard(card, sel)
			if ok {
				listings = append(listings, listing)
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %v", s.cfg.Name, err)
	}

	if len(listings) == 0 {
		return nil, fmt.Errorf("no products found on %s, selectors may be stale", s.cfg.Name)
	}

	log.Printf("✅ Scraped %d listings from %s", len(listings), s.cfg.Name)
	return listings, nil
}

func (s *WatsonsScraper) extractCard(card *rod.Element, sel config.Selectors) (models.Listing, bool) {
	var (
		listing models.Listing
		ok      bool
	)

	// One malformed card should not abort the whole scan.
	err := rod.Try(func() {
		name := childText(card, sel.ProductName)
		price := ParsePrice(childText(card, sel.Price))

		var originalPrice float64
		if sel.OriginalPrice != "" {
			originalPrice = ParsePrice(childText(card, sel.OriginalPrice))
		}

		link := childAttr(card, sel.ProductLink, "href")
		if link != "" && strings.HasPrefix(link, "/") {
			link = s.cfg.BaseURL + link
		}
		image := childAttr(card, sel.Image, "src")

		inStock := true
		if sel.InStock != "" {
			stockText := strings.ToLower(childText(card, sel.InStock))
			inStock = stockText == "" || !strings.Contains(stockText, "out of stock")
		}

		listing, ok = BuildListing(s.cfg.Marketplace, name, link, image, price, originalPrice, inStock)
	})
	if err != nil {
		log.Printf("Skipping unreadable %s card: %v", s.cfg.Name, err)
		return models.Listing{}, false
	}

	return listing, ok
}

// childText returns the text of the first child matching the selector, or
// "" when none exists.
func childText(el *rod.Element, selector string) string {
	if selector == "" {
		return ""
	}
	has, child, err := el.Has(selector)
	if err != nil || !has {
		return ""
	}
	text, err := child.Text()
	if err != nil {
		return ""
	}
	return text
}

// childAttr returns an attribute of the first child matching the selector.
func childAttr(el *rod.Element, selector, attr string) string {
	if selector == "" {
		return ""
	}
	has, child, err := el.Has(selector)
	if err != nil || !has {
		return ""
	}
	value, err := child.Attribute(attr)
	if err != nil || value == nil {
		return ""
	}
	return *value
}
