// Package normalizer turns free-text pharmacy product names into
// structured facts (active ingredient, dosage, pack quantity) and derives
// per-unit prices. All functions are pure and safe to call repeatedly on
// the same input.
package normalizer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// UnknownIngredient is returned when no vocabulary entry matches.
const UnknownIngredient = "UNKNOWN"

// Facts holds the normalized view of a product name used for matching.
type Facts struct {
	Ingredient string
	Dosage     string
	Quantity   int
	Tokens     map[string]bool
}

// ingredients is the active-substance vocabulary, first match wins.
var ingredients = []string{"Sildenafil", "Tadalafil", "Vardenafil"}

// quantityRule is one entry of the quantity extraction cascade. Rules are
// tried in order and the first match wins; max guards against mistaking a
// dosage number for a pack size.
type quantityRule struct {
	re    *regexp.Regexp
	group int
	max   int // 0 = no upper bound
}

// Patterns mirror the pack-size spellings seen on Philippine pharmacy
// listings: "8 Tablets", "4s", "Box of 4", "x10", "(4)".
var quantityRules = []quantityRule{
	{re: regexp.MustCompile(`(?i)(\d+)\s*(tablets?|tabs?|pcs?|capsules?|pieces?|units?)`), group: 1},
	{re: regexp.MustCompile(`(?i)(\d+)s\b`), group: 1},
	{re: regexp.MustCompile(`(?i)(box|pack)\s*(of)?\s*(\d+)`), group: 3},
	{re: regexp.MustCompile(`(?i)x(\d+)\b`), group: 1},
	{re: regexp.MustCompile(`\((\d+)\)`), group: 1, max: 100},
}

var (
	dosageRe   = regexp.MustCompile(`(?i)(\d+)\s*mg`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Normalize extracts the matching facts for a product name. explicitDosage
// wins over dosage parsed from the name when non-empty. Ingredient falls
// back to UnknownIngredient and quantity to 1 (single-unit assumption).
func Normalize(name, explicitDosage string) Facts {
	return Facts{
		Ingredient: ExtractIngredient(name),
		Dosage:     ExtractDosage(name, explicitDosage),
		Quantity:   ExtractQuantity(name),
		Tokens:     Tokens(name),
	}
}

// ExtractIngredient matches the name against the ingredient vocabulary,
// case-insensitively, first match wins.
func ExtractIngredient(name string) string {
	upper := strings.ToUpper(name)
	for _, ing := range ingredients {
		if strings.Contains(upper, strings.ToUpper(ing)) {
			return ing
		}
	}
	return UnknownIngredient
}

// ExtractDosage returns the explicit dosage when given, otherwise the
// first "<N>mg" occurrence in the name, lowercased. Empty when neither is
// available.
func ExtractDosage(name, explicit string) string {
	if explicit != "" {
		return strings.ToLower(explicit)
	}
	if m := dosageRe.FindStringSubmatch(name); m != nil {
		return m[1] + "mg"
	}
	return ""
}

// ExtractQuantity returns the pack quantity encoded in the name, or 1 when
// no pattern matches. Never returns less than 1.
func ExtractQuantity(name string) int {
	lower := strings.ToLower(name)
	for _, rule := range quantityRules {
		m := rule.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[rule.group])
		if err != nil || n < 1 {
			continue
		}
		if rule.max > 0 && n > rule.max {
			continue
		}
		return n
	}
	return 1
}

// Tokens returns the set of unique lowercase alphanumeric words in the
// name, used for token-overlap matching.
func Tokens(name string) map[string]bool {
	cleaned := nonAlnumRe.ReplaceAllString(strings.ToLower(name), " ")
	set := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		set[tok] = true
	}
	return set
}

// Overlap counts the tokens two sets have in common.
func Overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if b[tok] {
			n++
		}
	}
	return n
}

// PricePerUnit divides the pack price by the pack quantity, rounded to two
// decimals (half away from zero). A non-positive quantity returns the
// price unchanged.
func PricePerUnit(price float64, quantity int) float64 {
	if quantity <= 0 {
		return price
	}
	return math.Round(price/float64(quantity)*100) / 100
}

// DiscountPercent returns the whole-percent discount of current against
// original, or 0 when there is no discount to speak of.
func DiscountPercent(original, current float64) int {
	if original <= 0 || current >= original {
		return 0
	}
	return int(math.Round((original - current) / original * 100))
}
