package claims

import "testing"

func TestApprovedAmount(t *testing.T) {
	cases := []struct {
		name        string
		claimAmount float64
		deductible  float64
		coverage    float64
		want        float64
	}{
		{"deducible simple", 5000, 300, 25000, 4700},
		{"tope de cobertura", 60000, 100, 50000, 50000},
		{"reclamo menor al deducible", 200, 500, 10000, 0},
		{"reclamo igual al deducible", 500, 500, 10000, 0},
		{"reclamo cero", 0, 300, 25000, 0},
		{"justo en el tope", 50100, 100, 50000, 50000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApprovedAmount(tc.claimAmount, tc.deductible, tc.coverage)
			if got != tc.want {
				t.Fatalf("ApprovedAmount(%v, %v, %v) = %v, want %v",
					tc.claimAmount, tc.deductible, tc.coverage, got, tc.want)
			}
		})
	}
}

func TestApprovedAmount_NeverNegativeNeverAboveCoverage(t *testing.T) {
	amounts := []float64{0, 100, 499, 500, 501, 9999, 10000, 10500, 100000}
	for _, a := range amounts {
		got := ApprovedAmount(a, 500, 10000)
		if got < 0 {
			t.Fatalf("negative payout for claim %v: %v", a, got)
		}
		if got > 10000 {
			t.Fatalf("payout above coverage for claim %v: %v", a, got)
		}
	}
}
