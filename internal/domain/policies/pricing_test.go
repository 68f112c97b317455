package policies

import "testing"

func TestQuote_PremiumDog3Years(t *testing.T) {
	got := Quote("premium", "dog", 3)

	if got.Breakdown.BaseRate != 2000 {
		t.Fatalf("base rate = %v, want 2000", got.Breakdown.BaseRate)
	}
	if got.Breakdown.SpeciesMultiplier != 1.2 {
		t.Fatalf("species multiplier = %v, want 1.2", got.Breakdown.SpeciesMultiplier)
	}
	if got.Breakdown.AgeMultiplier != 1.0 {
		t.Fatalf("age multiplier = %v, want 1.0", got.Breakdown.AgeMultiplier)
	}
	if got.Breakdown.BasePremium != 2400 {
		t.Fatalf("base premium = %v, want 2400", got.Breakdown.BasePremium)
	}
	if got.Premium != 3000 {
		t.Fatalf("premium = %v, want 3000", got.Premium)
	}
	if got.Breakdown.CompanyProfit != 600 {
		t.Fatalf("company profit = %v, want 600", got.Breakdown.CompanyProfit)
	}
	if got.CoverageAmount != 50000 {
		t.Fatalf("coverage amount = %v, want 50000", got.CoverageAmount)
	}
	if got.Deductible != 100 {
		t.Fatalf("deductible = %v, want 100", got.Deductible)
	}
}

func TestQuote_BasicBird10Years_RoundsHalfUp(t *testing.T) {
	got := Quote("basic", "bird", 10)

	// 500 × 0.6 × 1.5 = 450; premium = round(450 × 1.25) = round(562.5) = 563
	if got.Breakdown.BasePremium != 450 {
		t.Fatalf("base premium = %v, want 450", got.Breakdown.BasePremium)
	}
	if got.Premium != 563 {
		t.Fatalf("premium = %v, want 563", got.Premium)
	}
	if got.Breakdown.CompanyProfit != 113 {
		t.Fatalf("company profit = %v, want 113", got.Breakdown.CompanyProfit)
	}
	if got.CoverageAmount != 10000 {
		t.Fatalf("coverage amount = %v, want 10000", got.CoverageAmount)
	}
	if got.Deductible != 500 {
		t.Fatalf("deductible = %v, want 500", got.Deductible)
	}
}

func TestQuote_UnknownInputsFallBackToDefaults(t *testing.T) {
	got := Quote("platinum", "dragon", 3)

	if got.CoverageType != CoverageStandard {
		t.Fatalf("coverage type = %s, want standard", got.CoverageType)
	}
	if got.Breakdown.BaseRate != 1000 {
		t.Fatalf("base rate = %v, want 1000 (standard)", got.Breakdown.BaseRate)
	}
	if got.Breakdown.SpeciesMultiplier != 1.0 {
		t.Fatalf("species multiplier = %v, want 1.0 (other)", got.Breakdown.SpeciesMultiplier)
	}

	// Edad negativa tampoco falla: se trata como 0.
	if Quote("basic", "cat", -1).Breakdown.AgeMultiplier != 0.9 {
		t.Fatalf("negative age should clamp to youngest band")
	}
}

func TestQuote_AgeBandBoundariesUseLowerBand(t *testing.T) {
	cases := []struct {
		age  float64
		want float64
	}{
		{0, 0.9},
		{2, 0.9}, // borde: banda inferior
		{2.5, 1.0},
		{5, 1.0}, // borde: banda inferior
		{6, 1.3},
		{8, 1.3}, // borde: banda inferior
		{9, 1.5},
		{15, 1.5},
	}

	for _, tc := range cases {
		got := Quote("standard", "cat", tc.age)
		if got.Breakdown.AgeMultiplier != tc.want {
			t.Errorf("age %v: multiplier = %v, want %v", tc.age, got.Breakdown.AgeMultiplier, tc.want)
		}
	}
}

func TestQuote_AllTiersNonNegativeAndConsistentMargin(t *testing.T) {
	tiers := []string{"basic", "standard", "premium"}
	species := []string{"dog", "cat", "bird", "rabbit", "other"}
	ages := []float64{0, 2, 3, 5, 7, 8, 12}

	for _, tier := range tiers {
		for _, sp := range species {
			for _, age := range ages {
				got := Quote(tier, sp, age)
				if got.Premium < 0 {
					t.Fatalf("%s/%s/%v: negative premium", tier, sp, age)
				}
				// profit = premium − basePremium, salvo diferencia de redondeo de ±1
				diff := got.Premium - got.Breakdown.BasePremium - got.Breakdown.CompanyProfit
				if diff < -1 || diff > 1 {
					t.Fatalf("%s/%s/%v: margin inconsistent: premium=%v base=%v profit=%v",
						tier, sp, age, got.Premium, got.Breakdown.BasePremium, got.Breakdown.CompanyProfit)
				}
			}
		}
	}
}

func TestQuote_Deterministic(t *testing.T) {
	a := Quote("premium", "rabbit", 7)
	b := Quote("premium", "rabbit", 7)
	if a != b {
		t.Fatalf("same input produced different quotes: %#v vs %#v", a, b)
	}
}
