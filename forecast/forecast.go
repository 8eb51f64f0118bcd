// Package forecast suggests a target price from a competitor's price
// history. It is a simple heuristic advisor (least squares plus
// exponential smoothing), not a validated statistical model: no confidence
// intervals, no seasonality, no outlier rejection.
package forecast

import (
	"fmt"
	"math"
)

// DefaultTargetVariance is the fraction above the predicted competitor
// price a suggestion aims for.
const DefaultTargetVariance = 0.05

// smoothingAlpha is the exponential smoothing factor.
const smoothingAlpha = 0.25

// Suggestion is the advisor's output. Pointer fields are nil when no
// history was available to forecast from.
type Suggestion struct {
	SuggestedPrice           *float64 `json:"suggested_price"`
	PredictedCompetitorPrice *float64 `json:"predicted_competitor_price"`
	TrendPercent             *float64 `json:"trend_percent"`
	Text                     string   `json:"text"`
}

// Suggest predicts the competitor's next price from its history (oldest to
// newest) and proposes a price targetVariance above the prediction, never
// raising a price that is already at or below the target. The clamp only
// applies when ourPrice is positive; zero or negative means no own price
// is set and the raw target is returned. Empty history yields a nil-valued
// suggestion with an explanatory message.
func Suggest(ourPrice float64, history []float64, targetVariance float64) Suggestion {
	if len(history) == 0 {
		return Suggestion{
			Text: "No competitor history available to forecast a suggested price.",
		}
	}

	last := history[len(history)-1]
	lin, linOK := linearRegressionPredict(history)
	exp, expOK := expSmoothPredict(history, smoothingAlpha)

	var predicted float64
	switch {
	case linOK && expOK:
		predicted = (lin + exp) / 2
	case linOK:
		predicted = lin
	case expOK:
		predicted = exp
	default:
		predicted = last
	}

	var trendPercent *float64
	if last != 0 {
		t := math.Round((predicted-last)/last*1000) / 10
		trendPercent = &t
	}

	suggested := math.Round(predicted*(1+targetVariance)*100) / 100
	if ourPrice > 0 && ourPrice <= suggested {
		suggested = ourPrice
	}
	rounded := math.Round(predicted*100) / 100

	trendText := "n/a"
	if trendPercent != nil {
		trendText = fmt.Sprintf("%.1f%%", *trendPercent)
	}
	text := fmt.Sprintf(
		"Forecast: competitor expected ₱%.2f (trend %s). Suggest setting price to ₱%.2f to stay within %.0f%% of forecast.",
		rounded, trendText, suggested, targetVariance*100)

	return Suggestion{
		SuggestedPrice:           &suggested,
		PredictedCompetitorPrice: &rounded,
		TrendPercent:             trendPercent,
		Text:                     text,
	}
}

// linearRegressionPredict fits price against the sequential index 0..n-1
// by ordinary least squares and extrapolates to index n. A single point
// degenerates to that point.
func linearRegressionPredict(points []float64) (float64, bool) {
	n := len(points)
	if n == 0 {
		return 0, false
	}
	if n == 1 {
		return points[0], true
	}

	meanX := float64(n-1) / 2
	var meanY float64
	for _, p := range points {
		meanY += p
	}
	meanY /= float64(n)

	var num, den float64
	for i, p := range points {
		dx := float64(i) - meanX
		num += dx * (p - meanY)
		den += dx * dx
	}
	slope := 0.0
	if den != 0 {
		slope = num / den
	}
	intercept := meanY - slope*meanX
	return intercept + slope*float64(n), true
}

// expSmoothPredict runs simple exponential smoothing over the series and
// predicts the next value as the final smoothed value.
func expSmoothPredict(points []float64, alpha float64) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	s := points[0]
	for _, p := range points[1:] {
		s = alpha*p + (1-alpha)*s
	}
	return s, true
}
