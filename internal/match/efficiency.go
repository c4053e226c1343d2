package match

import "sort"

// MaxSurplus computes the maximum attainable total surplus by greedily
// pairing sorted valuations (descending) against sorted costs
// (ascending). A pair counts only while valuation > cost.
func MaxSurplus(valuations, costs []float64) float64 {
	vals := append([]float64(nil), valuations...)
	cs := append([]float64(nil), costs...)
	sort.Sort(sort.Reverse(sort.Float64Slice(vals)))
	sort.Float64s(cs)

	total := 0.0
	for i := 0; i < len(vals) && i < len(cs); i++ {
		if vals[i] <= cs[i] {
			break
		}
		total += vals[i] - cs[i]
	}
	return total
}

// Efficiency returns realized surplus as a percentage of the maximum
// attainable surplus, defined as 100 when the maximum is zero.
func Efficiency(realized float64, valuations, costs []float64) float64 {
	max := MaxSurplus(valuations, costs)
	if max == 0 {
		return 100
	}
	return realized / max * 100
}
