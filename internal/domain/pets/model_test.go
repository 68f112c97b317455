package pets

import (
	"testing"
	"time"
)

func TestPet_AgeYears(t *testing.T) {
	dob := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	p := Pet{DateOfBirth: dob}

	cases := []struct {
		name string
		now  time.Time
		want int
	}{
		{"day before birthday", time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), 5},
		{"on birthday", time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 6},
		{"day after birthday", time.Date(2026, 6, 16, 0, 0, 0, 0, time.UTC), 6},
		{"earlier month", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 5},
		{"before birth", time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tc := range cases {
		if got := p.AgeYears(tc.now); got != tc.want {
			t.Errorf("%s: AgeYears = %d, want %d", tc.name, got, tc.want)
		}
	}
}
