package aggregator

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"pricingradar/models"
)

func discounted(name string, percent int) models.Listing {
	return models.Listing{
		Name:            name,
		Price:           100,
		OriginalPrice:   120,
		DiscountPercent: percent,
		Marketplace:     models.MarketplaceWatsons,
	}
}

func comparableGroup(unitMedsGo, unitWatsons float64) models.ComparisonGroup {
	diff := unitMedsGo - unitWatsons
	diffPercent := diff / unitWatsons * 100
	cheapest := models.MarketplaceMedsGo
	if unitMedsGo > unitWatsons {
		cheapest = models.MarketplaceWatsons
	}
	return models.ComparisonGroup{
		Ingredient:       "Sildenafil",
		Dosage:           "50mg",
		MedsGo:           &models.Listing{Name: "Sildenafil 50mg", PricePerUnit: unitMedsGo, Quantity: 1, Marketplace: models.MarketplaceMedsGo},
		Watsons:          &models.Listing{Name: "Sildenafil 50mg", PricePerUnit: unitWatsons, Quantity: 1, Marketplace: models.MarketplaceWatsons},
		PriceDiff:        &diff,
		PriceDiffPercent: &diffPercent,
		Cheapest:         cheapest,
		MarketAverage:    (unitMedsGo + unitWatsons) / 2,
	}
}

func TestBuildAlertsDiscount(t *testing.T) {
	listings := []models.Listing{
		discounted("Erecfil 50mg", 20),
		discounted("Cialis 20mg", 10), // below threshold
	}

	alerts := BuildAlerts(listings, nil, DefaultThresholds())
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Type != models.AlertDiscount {
		t.Errorf("type = %s, want discount", alerts[0].Type)
	}
	if alerts[0].Severity != models.SeveritySuccess {
		t.Errorf("severity = %s", alerts[0].Severity)
	}
	if !strings.Contains(alerts[0].Message, "Erecfil 50mg") {
		t.Errorf("message = %q", alerts[0].Message)
	}
}

func TestBuildAlertsVariance(t *testing.T) {
	groups := []models.ComparisonGroup{
		comparableGroup(85, 835),  // huge gap
		comparableGroup(100, 105), // under 10%
	}

	alerts := BuildAlerts(nil, groups, DefaultThresholds())
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Type != models.AlertCheapest || a.Severity != models.SeverityWarning {
		t.Errorf("unexpected alert: %+v", a)
	}
	if !strings.Contains(a.Title, "MedsGo") {
		t.Errorf("title should name the cheaper side: %q", a.Title)
	}
	if !strings.Contains(a.Message, "₱85.00/tab") || !strings.Contains(a.Message, "₱835.00/tab") {
		t.Errorf("message = %q", a.Message)
	}
}

func TestBuildAlertsDiscountsComeFirst(t *testing.T) {
	listings := []models.Listing{discounted("Erecfil 50mg", 25)}
	groups := []models.ComparisonGroup{comparableGroup(85, 835)}

	alerts := BuildAlerts(listings, groups, DefaultThresholds())
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].Type != models.AlertDiscount || alerts[1].Type != models.AlertCheapest {
		t.Errorf("wrong order: %s, %s", alerts[0].Type, alerts[1].Type)
	}
}

func TestBuildAlertsCap(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 15; i++ {
		listings = append(listings, discounted(fmt.Sprintf("Product %d", i), 30))
	}

	alerts := BuildAlerts(listings, nil, DefaultThresholds())
	if len(alerts) != 10 {
		t.Fatalf("expected cap at 10 alerts, got %d", len(alerts))
	}
	// Positional truncation keeps the first listings, not the deepest discounts.
	if !strings.Contains(alerts[0].Message, "Product 0") {
		t.Errorf("first alert = %q", alerts[0].Message)
	}
}

func TestComputeMarketStats(t *testing.T) {
	groups := []models.ComparisonGroup{
		comparableGroup(80, 100),
		comparableGroup(120, 100),
		comparableGroup(90, 100),
		{Ingredient: "Tadalafil", Dosage: "20mg", MedsGo: &models.Listing{PricePerUnit: 50}}, // one-sided, ignored
	}

	stats := ComputeMarketStats(groups)
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.TotalComparable != 3 {
		t.Errorf("total comparable = %d, want 3", stats.TotalComparable)
	}
	if stats.MedsGoWins != 2 || stats.WatsonsWins != 1 {
		t.Errorf("wins = %d/%d, want 2/1", stats.MedsGoWins, stats.WatsonsWins)
	}
	wantAvgM := (80.0 + 120.0 + 90.0) / 3
	if math.Abs(stats.AvgMedsGoPrice-wantAvgM) > 1e-9 {
		t.Errorf("avg medsgo = %v, want %v", stats.AvgMedsGoPrice, wantAvgM)
	}
	if stats.AvgWatsonsPrice != 100 {
		t.Errorf("avg watsons = %v, want 100", stats.AvgWatsonsPrice)
	}
	if stats.OverallCheaper != models.MarketplaceMedsGo {
		t.Errorf("overall cheaper = %s", stats.OverallCheaper)
	}
	wantDiff := (wantAvgM - 100) / 100 * 100
	if math.Abs(stats.PriceDiffPercent-wantDiff) > 1e-9 {
		t.Errorf("diff percent = %v, want %v", stats.PriceDiffPercent, wantDiff)
	}
}

func TestComputeMarketStatsNoComparableGroups(t *testing.T) {
	groups := []models.ComparisonGroup{
		{Ingredient: "Sildenafil", Dosage: "50mg", MedsGo: &models.Listing{PricePerUnit: 85}},
	}
	if stats := ComputeMarketStats(groups); stats != nil {
		t.Errorf("expected nil stats, got %+v", stats)
	}
	if stats := ComputeMarketStats(nil); stats != nil {
		t.Errorf("expected nil stats for empty input, got %+v", stats)
	}
}
