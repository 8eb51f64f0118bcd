// Package matcher pairs competitor listings from the two scraped catalogs
// into comparison groups. Two strategies exist: ingredient/dosage
// bucketing feeds the comparison table, token-overlap pairing joins the
// catalogs at scan time. Both are pure and never mutate their inputs.
package matcher

import (
	"sort"

	"pricingradar/models"
	"pricingradar/normalizer"
)

// Group buckets listings by ingredient+dosage and reduces each bucket to
// at most one representative per marketplace (the cheapest per unit, first
// seen on ties). Listings without a recognized ingredient or dosage are
// dropped. Output is sorted by (ingredient, dosage).
func Group(listings []models.Listing) []models.ComparisonGroup {
	groups := make(map[string]*models.ComparisonGroup)
	var order []string

	for i := range listings {
		listing := withUnitPrice(listings[i])
		facts := normalizer.Normalize(listing.Name, listing.Dosage)
		if facts.Ingredient == normalizer.UnknownIngredient || facts.Dosage == "" {
			continue
		}

		key := facts.Ingredient + "-" + facts.Dosage
		group, ok := groups[key]
		if !ok {
			group = &models.ComparisonGroup{
				Ingredient: facts.Ingredient,
				Dosage:     facts.Dosage,
			}
			groups[key] = group
			order = append(order, key)
		}

		switch listing.Marketplace {
		case models.MarketplaceMedsGo:
			if group.MedsGo == nil || listing.UnitPrice() < group.MedsGo.UnitPrice() {
				group.MedsGo = &listing
			}
		case models.MarketplaceWatsons:
			if group.Watsons == nil || listing.UnitPrice() < group.Watsons.UnitPrice() {
				group.Watsons = &listing
			}
		}
	}

	out := make([]models.ComparisonGroup, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if group.MedsGo == nil && group.Watsons == nil {
			continue
		}
		finalize(group)
		out = append(out, *group)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Ingredient != out[j].Ingredient {
			return out[i].Ingredient < out[j].Ingredient
		}
		return out[i].Dosage < out[j].Dosage
	})
	return out
}

// finalize fills the derived comparison fields for a bucket. MedsGo wins
// ties for cheapest, and priceDiff is medsgo minus watsons per unit.
func finalize(group *models.ComparisonGroup) {
	switch {
	case group.MedsGo != nil && group.Watsons != nil:
		unitM := group.MedsGo.UnitPrice()
		unitW := group.Watsons.UnitPrice()
		diff := unitM - unitW
		diffPercent := diff / unitW * 100
		group.PriceDiff = &diff
		group.PriceDiffPercent = &diffPercent
		if unitM <= unitW {
			group.Cheapest = models.MarketplaceMedsGo
		} else {
			group.Cheapest = models.MarketplaceWatsons
		}
		group.MarketAverage = (unitM + unitW) / 2
	case group.MedsGo != nil:
		group.Cheapest = models.MarketplaceMedsGo
		group.MarketAverage = group.MedsGo.UnitPrice()
	case group.Watsons != nil:
		group.Cheapest = models.MarketplaceWatsons
		group.MarketAverage = group.Watsons.UnitPrice()
	}
}

// Pair greedily joins source-A listings to source-B listings by token
// overlap, in source-A input order. A pairing is accepted when the overlap
// reaches max(1, |tokensA|/3); each source-B listing is used at most once.
// Source-B listings never chosen trail the output as unpaired entries.
// The assignment is deliberately order-dependent and not globally optimal;
// naming variance across the marketplaces makes a loose heuristic
// acceptable here.
func Pair(sourceA, sourceB []models.Listing) []models.MatchedPair {
	bTokens := make([]map[string]bool, len(sourceB))
	for i := range sourceB {
		bTokens[i] = normalizer.Tokens(sourceB[i].Name)
	}

	used := make([]bool, len(sourceB))
	pairs := make([]models.MatchedPair, 0, len(sourceA)+len(sourceB))

	for i := range sourceA {
		a := withUnitPrice(sourceA[i])
		aTokens := normalizer.Tokens(a.Name)

		best := -1
		bestScore := 0
		for j := range sourceB {
			if used[j] {
				continue
			}
			if score := normalizer.Overlap(aTokens, bTokens[j]); score > bestScore {
				best = j
				bestScore = score
			}
		}

		threshold := len(aTokens) / 3
		if threshold < 1 {
			threshold = 1
		}
		if best >= 0 && bestScore >= threshold {
			used[best] = true
			b := withUnitPrice(sourceB[best])
			pairs = append(pairs, models.MatchedPair{A: &a, B: &b, Score: bestScore})
		} else {
			pairs = append(pairs, models.MatchedPair{A: &a})
		}
	}

	for j := range sourceB {
		if used[j] {
			continue
		}
		b := withUnitPrice(sourceB[j])
		pairs = append(pairs, models.MatchedPair{B: &b})
	}

	return pairs
}

// withUnitPrice returns a copy of the listing with quantity and per-unit
// price filled in when the scraper did not already derive them.
func withUnitPrice(l models.Listing) models.Listing {
	if l.Quantity <= 0 {
		l.Quantity = normalizer.ExtractQuantity(l.Name)
	}
	if l.PricePerUnit <= 0 {
		l.PricePerUnit = normalizer.PricePerUnit(l.Price, l.Quantity)
	}
	return l
}
