package config

import (
	"os"
	"path/filepath"
	"testing"

	"pricingradar/models"
)

func TestDefaultMarketplaces(t *testing.T) {
	configs := DefaultMarketplaces()

	for _, mp := range []models.Marketplace{models.MarketplaceMedsGo, models.MarketplaceWatsons} {
		cfg, ok := configs[mp]
		if !ok {
			t.Fatalf("missing default config for %s", mp)
		}
		if !cfg.Enabled {
			t.Errorf("%s should be enabled by default", mp)
		}
		if cfg.CategoryURL == "" || cfg.Selectors.ProductCard == "" {
			t.Errorf("%s config incomplete: %+v", mp, cfg)
		}
	}
}

func TestLoadMarketplacesEmptyPath(t *testing.T) {
	configs, err := LoadMarketplaces("")
	if err != nil {
		t.Fatalf("LoadMarketplaces failed: %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("expected the 2 defaults, got %d", len(configs))
	}
}

func TestLoadMarketplacesOverlay(t *testing.T) {
	yaml := `
marketplaces:
  - marketplace: watsons
    name: Watsons PH (staging)
    base_url: https://staging.watsons.com.ph
    category_url: https://staging.watsons.com.ph/ed/c/060410
    enabled: false
    selectors:
      product_card: ".card"
      product_name: ".name"
      price: ".price"
`
	path := filepath.Join(t.TempDir(), "marketplaces.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	configs, err := LoadMarketplaces(path)
	if err != nil {
		t.Fatalf("LoadMarketplaces failed: %v", err)
	}

	watsons := configs[models.MarketplaceWatsons]
	if watsons.Name != "Watsons PH (staging)" || watsons.Enabled {
		t.Errorf("override not applied: %+v", watsons)
	}
	if watsons.Selectors.ProductCard != ".card" {
		t.Errorf("selectors not overridden: %+v", watsons.Selectors)
	}

	// Untouched entries keep their defaults.
	medsgo := configs[models.MarketplaceMedsGo]
	if !medsgo.Enabled || medsgo.Selectors.ProductCard != ".ut2-gl__item" {
		t.Errorf("medsgo default lost: %+v", medsgo)
	}
}

func TestLoadMarketplacesMissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketplaces.yaml")
	if err := os.WriteFile(path, []byte("marketplaces:\n  - name: nameless\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMarketplaces(path); err == nil {
		t.Fatal("expected an error for an entry without a marketplace id")
	}
}

func TestLoadMarketplacesMissingFile(t *testing.T) {
	if _, err := LoadMarketplaces("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
