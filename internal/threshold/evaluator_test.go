package threshold

import "testing"

func TestEvaluatorTier(t *testing.T) {
	e := NewEvaluator(80.0, 5.0)
	cases := []struct {
		temp float64
		want Tier
	}{
		{temp: 85.5, want: Danger},
		{temp: 80.0, want: Danger},
		{temp: 79.99, want: Caution},
		{temp: 75.0, want: Caution},
		{temp: 74.99, want: Safe},
		{temp: -10, want: Safe},
	}
	for _, tc := range cases {
		if got := e.Tier(tc.temp); got != tc.want {
			t.Errorf("Tier(%.2f) = %s, want %s", tc.temp, got, tc.want)
		}
	}
}

func TestTierText(t *testing.T) {
	b, err := Danger.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(b) != "danger" {
		t.Fatalf("expected danger, got %s", b)
	}
}
