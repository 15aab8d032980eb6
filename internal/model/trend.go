package model

// Trend is the long-run real exchange rate path, indexed like every other
// series: index 0 is period 1.
type Trend []float64

// NewTrend builds the linear trend anchored at the real exchange rate of
// period 2 and appreciating by rate every year:
//
//	trend[t] = q2 - (t-2)·rate,  t = 1..periods
func NewTrend(q2, rate float64, periods int) Trend {
	if periods <= 0 {
		return nil
	}
	tr := make(Trend, periods)
	for i := range tr {
		// i is zero-based, period t = i+1.
		tr[i] = q2 - float64(i-1)*rate
	}
	return tr
}
