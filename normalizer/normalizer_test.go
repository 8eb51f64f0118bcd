package normalizer

import (
	"math"
	"testing"
)

func TestExtractQuantity(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Sildenafil 50mg 8 Tablets", 8},
		{"Erecfil 100mg Film-Coated Tablet 4s", 4},
		{"Pack of 12", 12},
		{"TADALAFIL Box of 4", 4},
		{"Cialis 20mg x10", 10},
		{"VIAGRA Sildenafil 100mg Tablet (4)", 4},
		{"Sildenafil 50mg Tablet", 1},
		{"", 1},
		// Tablet count wins over a competing box-of pattern.
		{"Box of 4 - 8 Tablets", 8},
		// Parenthetical numbers above 100 are lot numbers, not pack sizes.
		{"Tadalafil Tablet (500)", 1},
	}

	for _, tt := range tests {
		if got := ExtractQuantity(tt.name); got != tt.want {
			t.Errorf("ExtractQuantity(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestExtractQuantityDeterministic(t *testing.T) {
	name := "Erecto Sildenafil 50mg 8 Tablets x10"
	first := ExtractQuantity(name)
	for i := 0; i < 5; i++ {
		if got := ExtractQuantity(name); got != first {
			t.Fatalf("ExtractQuantity not stable: got %d then %d", first, got)
		}
	}
}

func TestExtractIngredient(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"VIAGRA Sildenafil 100mg", "Sildenafil"},
		{"tadalafil 20mg tablet", "Tadalafil"},
		{"Levitra VARDENAFIL 10mg", "Vardenafil"},
		{"Paracetamol 500mg", UnknownIngredient},
		{"", UnknownIngredient},
	}

	for _, tt := range tests {
		if got := ExtractIngredient(tt.name); got != tt.want {
			t.Errorf("ExtractIngredient(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractDosage(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		want     string
	}{
		{"Sildenafil 100mg Tablet", "", "100mg"},
		{"Sildenafil 100 mg Tablet", "", "100mg"},
		{"Sildenafil Tablet", "", ""},
		{"Sildenafil 100mg Tablet", "50MG", "50mg"},
		{"Sildenafil 50mg plus 100mg", "", "50mg"},
	}

	for _, tt := range tests {
		if got := ExtractDosage(tt.name, tt.explicit); got != tt.want {
			t.Errorf("ExtractDosage(%q, %q) = %q, want %q", tt.name, tt.explicit, got, tt.want)
		}
	}
}

func TestTokensAndOverlap(t *testing.T) {
	a := Tokens("VIAGRA Sildenafil 100mg Tablet (4)")
	for _, tok := range []string{"viagra", "sildenafil", "100mg", "tablet", "4"} {
		if !a[tok] {
			t.Errorf("expected token %q in %v", tok, a)
		}
	}

	// Duplicates collapse into the set.
	if got := len(Tokens("tablet tablet TABLET")); got != 1 {
		t.Errorf("expected 1 unique token, got %d", got)
	}

	b := Tokens("Sildenafil 100mg Film-Coated Tablet")
	if got := Overlap(a, b); got != 3 {
		t.Errorf("Overlap = %d, want 3", got)
	}
	if got := Overlap(b, a); got != 3 {
		t.Errorf("Overlap not symmetric: got %d", got)
	}
	if got := Overlap(a, Tokens("")); got != 0 {
		t.Errorf("Overlap with empty set = %d, want 0", got)
	}
}

func TestPricePerUnit(t *testing.T) {
	tests := []struct {
		price    float64
		quantity int
		want     float64
	}{
		{680, 8, 85},
		{100, 3, 33.33},
		{835, 1, 835},
		{100, 0, 100},
		{100, -2, 100},
	}

	for _, tt := range tests {
		if got := PricePerUnit(tt.price, tt.quantity); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("PricePerUnit(%v, %d) = %v, want %v", tt.price, tt.quantity, got, tt.want)
		}
	}
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		original float64
		current  float64
		want     int
	}{
		{1000, 850, 15},
		{100, 90, 10},
		{100, 100, 0},
		{100, 120, 0},
		{0, 50, 0},
	}

	for _, tt := range tests {
		if got := DiscountPercent(tt.original, tt.current); got != tt.want {
			t.Errorf("DiscountPercent(%v, %v) = %d, want %d", tt.original, tt.current, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	facts := Normalize("VIAGRA Sildenafil 100mg Tablet (4)", "")
	if facts.Ingredient != "Sildenafil" {
		t.Errorf("Ingredient = %q", facts.Ingredient)
	}
	if facts.Dosage != "100mg" {
		t.Errorf("Dosage = %q", facts.Dosage)
	}
	if facts.Quantity != 4 {
		t.Errorf("Quantity = %d", facts.Quantity)
	}
	if len(facts.Tokens) == 0 {
		t.Error("expected tokens")
	}
}
