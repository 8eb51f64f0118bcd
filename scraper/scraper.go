package scraper

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"pricingradar/models"
	"pricingradar/normalizer"
)

// MarketplaceScraper scrapes one marketplace category page into listings.
type MarketplaceScraper interface {
	Marketplace() models.Marketplace
	Scrape() ([]models.Listing, error)
}

// knownBrands are the ED brand names seen across both catalogs. Matching is
// case-insensitive; generics without a brand line stay unbranded.
var knownBrands = []string{
	"VIAGRA",
	"CIALIS",
	"LEVITRA",
	"Erecfil",
	"Erecto",
	"Spiagra",
	"Dalafil",
	"Retafil",
	"Vivax",
	"Caliberi",
}

var (
	priceRe      = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ParsePrice extracts a numeric amount from a scraped price string such as
// "₱1,234.56" or "PHP 835.00". Returns 0 when no amount is present.
func ParsePrice(text string) float64 {
	match := priceRe.FindString(text)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ",", "")
	var price float64
	if _, err := fmt.Sscanf(match, "%f", &price); err != nil {
		return 0
	}
	return price
}

// ExtractBrand returns the first known brand mentioned in the product name,
// or "" when the listing is an unbranded generic.
func ExtractBrand(name string) string {
	lower := strings.ToLower(name)
	for _, brand := range knownBrands {
		if strings.Contains(lower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

// CleanName collapses whitespace and trims a scraped product name.
func CleanName(name string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
}

// listingID derives a stable listing id from the marketplace and product
// URL so repeat scans key the same product identically.
func listingID(mp models.Marketplace, url, name string) string {
	key := url
	if key == "" {
		key = name
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return fmt.Sprintf("%s-%08x", mp, h.Sum32())
}

// BuildListing assembles a fully-derived listing from raw scraped fields.
// Listings with an empty name or a non-positive price are not usable and
// return false.
func BuildListing(mp models.Marketplace, name, url, imageURL string, price, originalPrice float64, inStock bool) (models.Listing, bool) {
	name = CleanName(name)
	if name == "" || price <= 0 {
		return models.Listing{}, false
	}

	quantity := normalizer.ExtractQuantity(name)
	listing := models.Listing{
		ID:           listingID(mp, url, name),
		Name:         name,
		Brand:        ExtractBrand(name),
		Dosage:       normalizer.ExtractDosage(name, ""),
		Quantity:     quantity,
		PricePerUnit: normalizer.PricePerUnit(price, quantity),
		Price:        price,
		Currency:     "PHP",
		URL:          url,
		ImageURL:     imageURL,
		InStock:      inStock,
		Marketplace:  mp,
		ScrapedAt:    time.Now(),
	}

	if originalPrice > price {
		listing.OriginalPrice = originalPrice
		listing.DiscountPercent = normalizer.DiscountPercent(originalPrice, price)
	}

	return listing, true
}
