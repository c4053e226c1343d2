package match

import "testing"

func TestMaxSurplus(t *testing.T) {
	cases := []struct {
		name       string
		valuations []float64
		costs      []float64
		want       float64
	}{
		{"all profitable", []float64{90, 70, 50}, []float64{40, 60, 80}, (90 - 40) + (70 - 60)},
		{"stops at first unprofitable pair", []float64{50, 40}, []float64{45, 60}, 5},
		{"no feasible pair", []float64{30}, []float64{40}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tc := range cases {
		if got := MaxSurplus(tc.valuations, tc.costs); got != tc.want {
			t.Errorf("%s: MaxSurplus = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEfficiency(t *testing.T) {
	vals := []float64{90, 70}
	costs := []float64{40, 60}
	if got := Efficiency(60, vals, costs); got != 100 {
		t.Errorf("full surplus efficiency = %v, want 100", got)
	}
	if got := Efficiency(30, vals, costs); got != 50 {
		t.Errorf("half surplus efficiency = %v, want 50", got)
	}
	// Zero attainable surplus is 100% by convention.
	if got := Efficiency(0, []float64{10}, []float64{20}); got != 100 {
		t.Errorf("no feasible pair efficiency = %v, want 100", got)
	}
}
