// Package aggregator derives operator-facing signals from one scan:
// alerts worth acting on and summary statistics over the comparable
// groups. Everything here is recomputed from scratch each scan.
package aggregator

import (
	"fmt"
	"math"

	"pricingradar/models"
)

// Thresholds control when alerts fire and how many are kept.
type Thresholds struct {
	DiscountPercent float64 // single-listing discount alert
	VariancePercent float64 // cross-marketplace price gap alert
	MaxAlerts       int     // positional cap on the alert list
}

// DefaultThresholds matches the dashboard defaults: 15% discounts, 10%
// cross-source gaps, at most 10 alerts per scan.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DiscountPercent: 15,
		VariancePercent: 10,
		MaxAlerts:       10,
	}
}

// BuildAlerts generates the scan's alerts: discount alerts over all
// listings first, then cross-marketplace variance alerts over the
// comparable groups, truncated at MaxAlerts. The cap is positional, not a
// priority sort, to keep output stable for a given input.
func BuildAlerts(listings []models.Listing, groups []models.ComparisonGroup, t Thresholds) []models.Alert {
	alerts := []models.Alert{}

	for i := range listings {
		listing := &listings[i]
		if float64(listing.DiscountPercent) < t.DiscountPercent || listing.DiscountPercent <= 0 {
			continue
		}
		alerts = append(alerts, models.Alert{
			Type:     models.AlertDiscount,
			Severity: models.SeveritySuccess,
			Title:    fmt.Sprintf("%d%% Discount at %s", listing.DiscountPercent, listing.Marketplace),
			Message:  fmt.Sprintf("%s is %d%% off", listing.Name, listing.DiscountPercent),
			Action:   fmt.Sprintf("Check if we can match this %d%% discount", listing.DiscountPercent),
			Listing:  listing,
		})
	}

	for i := range groups {
		group := &groups[i]
		if !group.Comparable() || group.PriceDiffPercent == nil {
			continue
		}
		gap := math.Abs(*group.PriceDiffPercent)
		if gap < t.VariancePercent {
			continue
		}

		cheaper, pricier := group.MedsGo, group.Watsons
		cheaperName, pricierName := "MedsGo", "Watsons"
		if group.Cheapest == models.MarketplaceWatsons {
			cheaper, pricier = pricier, cheaper
			cheaperName, pricierName = pricierName, cheaperName
		}

		alerts = append(alerts, models.Alert{
			Type:     models.AlertCheapest,
			Severity: models.SeverityWarning,
			Title: fmt.Sprintf("%s %s: %s is %.0f%% cheaper per tablet",
				group.Ingredient, group.Dosage, cheaperName, gap),
			Message: fmt.Sprintf("%s sells at ₱%.2f/tab (%d tabs) vs %s at ₱%.2f/tab (%d tabs)",
				cheaperName, cheaper.UnitPrice(), cheaper.PackSize(),
				pricierName, pricier.UnitPrice(), pricier.PackSize()),
			Action: fmt.Sprintf("Consider pricing our %s %s competitively around ₱%.2f/tablet",
				group.Ingredient, group.Dosage, group.MarketAverage),
		})
	}

	if t.MaxAlerts > 0 && len(alerts) > t.MaxAlerts {
		alerts = alerts[:t.MaxAlerts]
	}
	return alerts
}

// ComputeMarketStats summarizes the groups where both marketplaces are
// present. Returns nil when no group is comparable.
func ComputeMarketStats(groups []models.ComparisonGroup) *models.MarketStats {
	var comparable []*models.ComparisonGroup
	for i := range groups {
		if groups[i].Comparable() {
			comparable = append(comparable, &groups[i])
		}
	}
	if len(comparable) == 0 {
		return nil
	}

	stats := &models.MarketStats{TotalComparable: len(comparable)}
	var sumMedsGo, sumWatsons float64
	for _, group := range comparable {
		switch group.Cheapest {
		case models.MarketplaceMedsGo:
			stats.MedsGoWins++
		case models.MarketplaceWatsons:
			stats.WatsonsWins++
		}
		sumMedsGo += group.MedsGo.UnitPrice()
		sumWatsons += group.Watsons.UnitPrice()
	}

	n := float64(len(comparable))
	stats.AvgMedsGoPrice = sumMedsGo / n
	stats.AvgWatsonsPrice = sumWatsons / n
	if stats.AvgMedsGoPrice < stats.AvgWatsonsPrice {
		stats.OverallCheaper = models.MarketplaceMedsGo
	} else {
		stats.OverallCheaper = models.MarketplaceWatsons
	}
	stats.PriceDiffPercent = (stats.AvgMedsGoPrice - stats.AvgWatsonsPrice) / stats.AvgWatsonsPrice * 100
	return stats
}
