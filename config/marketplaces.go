package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pricingradar/models"
)

// Selectors are the CSS selectors used to pull listing fields out of a
// marketplace category page. Site markup changes over time; keeping the
// selectors in config lets them be patched without a rebuild.
type Selectors struct {
	ProductCard   string `yaml:"product_card"`
	ProductName   string `yaml:"product_name"`
	ProductLink   string `yaml:"product_link"`
	Price         string `yaml:"price"`
	OriginalPrice string `yaml:"original_price"`
	Image         string `yaml:"image"`
	InStock       string `yaml:"in_stock"`
}

// MarketplaceConfig describes one monitored marketplace.
type MarketplaceConfig struct {
	Marketplace models.Marketplace `yaml:"marketplace"`
	Name        string             `yaml:"name"`
	BaseURL     string             `yaml:"base_url"`
	CategoryURL string             `yaml:"category_url"`
	Enabled     bool               `yaml:"enabled"`
	Selectors   Selectors          `yaml:"selectors"`
}

// DefaultMarketplaces returns the built-in marketplace registry.
func DefaultMarketplaces() map[models.Marketplace]MarketplaceConfig {
	return map[models.Marketplace]MarketplaceConfig{
		models.MarketplaceMedsGo: {
			Marketplace: models.MarketplaceMedsGo,
			Name:        "MedsGo Pharmacy",
			BaseURL:     "https://medsgo.ph",
			CategoryURL: "https://medsgo.ph/prescription-medicines/erectile-dysfunction/",
			Enabled:     true,
			Selectors: Selectors{
				ProductCard: ".ut2-gl__item",
				ProductName: ".ut2-gl__name a",
				ProductLink: ".ut2-gl__name a",
				Price:       ".ut2-gl__price",
				Image:       ".ut2-gl__image img",
				InStock:     ".ty-qty-in-stock",
			},
		},
		models.MarketplaceWatsons: {
			Marketplace: models.MarketplaceWatsons,
			Name:        "Watsons Philippines",
			BaseURL:     "https://www.watsons.com.ph",
			CategoryURL: "https://www.watsons.com.ph/health-and-rx/erectile-dysfunction-ed-/c/060410",
			Enabled:     true,
			Selectors: Selectors{
				ProductCard:   ".productInfo",
				ProductName:   ".productName",
				ProductLink:   "a[href*='/p/']",
				Price:         ".productPrice .formatted-value",
				OriginalPrice: ".was-price, .original-price, del, s",
				Image:         ".productImage img",
				InStock:       ".availability",
			},
		},
	}
}

// marketplacesFile is the YAML shape of an override file.
type marketplacesFile struct {
	Marketplaces []MarketplaceConfig `yaml:"marketplaces"`
}

// LoadMarketplaces returns the marketplace registry, overlaying entries
// from the YAML file at path when one is given. An empty path returns the
// defaults unchanged.
func LoadMarketplaces(path string) (map[models.Marketplace]MarketplaceConfig, error) {
	configs := DefaultMarketplaces()
	if path == "" {
		return configs, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read marketplaces file: %v", err)
	}

	var file marketplacesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse marketplaces file: %v", err)
	}

	for _, mc := range file.Marketplaces {
		if mc.Marketplace == "" {
			return nil, fmt.Errorf("marketplace entry missing marketplace id")
		}
		configs[mc.Marketplace] = mc
	}

	return configs, nil
}
