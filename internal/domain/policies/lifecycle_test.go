package policies

import (
	"testing"
	"time"
)

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	mk := func(status Status, start, end time.Time) Policy {
		return Policy{Status: status, StartDate: start, EndDate: end}
	}

	past := now.AddDate(0, -6, 0)
	future := now.AddDate(0, 6, 0)
	longPast := now.AddDate(-2, 0, 0)

	cases := []struct {
		name string
		p    Policy
		want Status
	}{
		{"pending inside window becomes active", mk(StatusPending, past, future), StatusActive},
		{"pending before window stays pending", mk(StatusPending, future, future.AddDate(1, 0, 0)), StatusPending},
		{"pending past end date expires", mk(StatusPending, longPast, past), StatusExpired},
		{"active past end date expires", mk(StatusActive, longPast, past), StatusExpired},
		{"active inside window stays active", mk(StatusActive, past, future), StatusActive},
		{"expired stays expired", mk(StatusExpired, longPast, past), StatusExpired},
		{"cancelled is terminal even past end date", mk(StatusCancelled, longPast, past), StatusCancelled},
		{"cancelled is terminal inside window", mk(StatusCancelled, past, future), StatusCancelled},
		{"pending starting exactly now activates", mk(StatusPending, now, future), StatusActive},
		{"pending ending exactly now activates", mk(StatusPending, past, now), StatusActive},
	}

	for _, tc := range cases {
		if got := DeriveStatus(tc.p, now); got != tc.want {
			t.Errorf("%s: DeriveStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestRenewedEndDate(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// Vigente: extiende desde el endDate actual.
	p := Policy{EndDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	if got := renewedEndDate(p, now); !got.Equal(time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("renew from future end: got %v", got)
	}

	// Vencida: extiende desde ahora.
	p = Policy{EndDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)}
	if got := renewedEndDate(p, now); !got.Equal(time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("renew from past end: got %v", got)
	}
}
