package matcher

import (
	"math"
	"testing"

	"pricingradar/models"
)

func medsgo(name string, price float64) models.Listing {
	return models.Listing{Name: name, Price: price, Marketplace: models.MarketplaceMedsGo}
}

func watsons(name string, price float64) models.Listing {
	return models.Listing{Name: name, Price: price, Marketplace: models.MarketplaceWatsons}
}

func TestGroupComparison(t *testing.T) {
	listings := []models.Listing{
		medsgo("Erecfil Sildenafil 50mg 8 Tablets", 680),
		watsons("Sildenafil 50mg Film-Coated Tablet", 835),
	}

	groups := Group(listings)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}

	g := groups[0]
	if g.Ingredient != "Sildenafil" || g.Dosage != "50mg" {
		t.Fatalf("wrong bucket: %s %s", g.Ingredient, g.Dosage)
	}
	if !g.Comparable() {
		t.Fatal("expected both marketplaces present")
	}
	if g.MedsGo.PricePerUnit != 85 {
		t.Errorf("medsgo unit price = %v, want 85", g.MedsGo.PricePerUnit)
	}
	if g.Watsons.PricePerUnit != 835 {
		t.Errorf("watsons unit price = %v, want 835", g.Watsons.PricePerUnit)
	}
	if g.Cheapest != models.MarketplaceMedsGo {
		t.Errorf("cheapest = %s, want medsgo", g.Cheapest)
	}
	if g.PriceDiff == nil || *g.PriceDiff != 85-835 {
		t.Errorf("price diff = %v, want -750", g.PriceDiff)
	}
	wantPercent := (85.0 - 835.0) / 835.0 * 100
	if g.PriceDiffPercent == nil || math.Abs(*g.PriceDiffPercent-wantPercent) > 1e-9 {
		t.Errorf("diff percent = %v, want %v", g.PriceDiffPercent, wantPercent)
	}
	if want := (85.0 + 835.0) / 2; g.MarketAverage != want {
		t.Errorf("market average = %v, want %v", g.MarketAverage, want)
	}
}

func TestGroupKeepsCheapestPerSource(t *testing.T) {
	listings := []models.Listing{
		medsgo("Sildenafil 100mg 4 Tablets", 400), // 100/unit
		medsgo("Sildenafil 100mg 8 Tablets", 640), // 80/unit, cheaper
	}

	groups := Group(listings)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].MedsGo.PricePerUnit != 80 {
		t.Errorf("kept unit price %v, want the cheaper 80", groups[0].MedsGo.PricePerUnit)
	}
}

func TestGroupTieGoesToMedsGo(t *testing.T) {
	listings := []models.Listing{
		medsgo("Sildenafil 50mg Tablet", 100),
		watsons("Sildenafil 50mg Tablet", 100),
	}

	groups := Group(listings)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	if groups[0].Cheapest != models.MarketplaceMedsGo {
		t.Errorf("tie should go to medsgo, got %s", groups[0].Cheapest)
	}
}

func TestGroupDropsUnmatchable(t *testing.T) {
	listings := []models.Listing{
		medsgo("Paracetamol 500mg 10 Tablets", 50), // unknown ingredient
		medsgo("Sildenafil Tablet", 100),           // no dosage
	}

	if groups := Group(listings); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestGroupSortedByIngredientThenDosage(t *testing.T) {
	listings := []models.Listing{
		medsgo("Tadalafil 20mg 4 Tablets", 400),
		medsgo("Sildenafil 100mg 4 Tablets", 300),
		medsgo("Sildenafil 50mg 4 Tablets", 200),
	}

	groups := Group(listings)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	want := []string{"Sildenafil-100mg", "Sildenafil-50mg", "Tadalafil-20mg"}
	for i, g := range groups {
		if g.Key() != want[i] {
			t.Errorf("groups[%d] = %s, want %s", i, g.Key(), want[i])
		}
	}
}

func TestGroupEmptyInput(t *testing.T) {
	if groups := Group(nil); len(groups) != 0 {
		t.Errorf("expected no groups for empty input, got %d", len(groups))
	}
}

func TestPairAcceptsAboveThreshold(t *testing.T) {
	// Six tokens on the A side means the pairing needs an overlap of two.
	a := []models.Listing{medsgo("Erecfil Sildenafil Citrate 50mg Film Tablet", 680)}
	b := []models.Listing{watsons("Sildenafil 50mg Generic", 835)}

	pairs := Pair(a, b)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].A == nil || pairs[0].B == nil {
		t.Fatalf("expected a full pair, got %+v", pairs[0])
	}
	if pairs[0].Score != 2 {
		t.Errorf("score = %d, want 2", pairs[0].Score)
	}
}

func TestPairRejectsBelowThreshold(t *testing.T) {
	a := []models.Listing{medsgo("Erecfil Sildenafil Citrate 50mg Film Tablet", 680)}
	b := []models.Listing{watsons("Tadalafil 20mg Capsule", 900)}

	pairs := Pair(a, b)
	if len(pairs) != 2 {
		t.Fatalf("expected unpaired A and leftover B, got %d entries", len(pairs))
	}
	if pairs[0].A == nil || pairs[0].B != nil {
		t.Errorf("expected unpaired A first, got %+v", pairs[0])
	}
	if pairs[1].A != nil || pairs[1].B == nil {
		t.Errorf("expected leftover B last, got %+v", pairs[1])
	}
}

func TestPairUsesEachBOnce(t *testing.T) {
	a := []models.Listing{
		medsgo("Sildenafil 50mg Tablet", 680),
		medsgo("Sildenafil 50mg Tabs", 700),
	}
	b := []models.Listing{watsons("Sildenafil 50mg Tablet", 835)}

	pairs := Pair(a, b)
	matched := 0
	for _, p := range pairs {
		if p.A != nil && p.B != nil {
			matched++
		}
	}
	if matched != 1 {
		t.Errorf("B side listing matched %d times, want 1", matched)
	}
}

func TestPairFillsUnitPrices(t *testing.T) {
	a := []models.Listing{medsgo("Sildenafil 50mg 8 Tablets", 680)}

	pairs := Pair(a, nil)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(pairs))
	}
	if pairs[0].A.Quantity != 8 || pairs[0].A.PricePerUnit != 85 {
		t.Errorf("unit price not derived: %+v", pairs[0].A)
	}
}
