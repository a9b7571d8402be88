// internal/hits/filter.go
package hits

// Default significance settings.
const (
	DefaultMaxEValue = 0.001
	// DefaultTopPercent is the assign-stage bitscore window.
	DefaultTopPercent = 5.0
	// SearchTopPercent is the window the search stage reports with.
	SearchTopPercent = 10.0
)

// FilterStats counts what Filter removed.
type FilterStats struct {
	EValue int
	Top    int
}

// Filter drops hits with e-value above maxEValue, then keeps hits with
// bitscore >= max_bitscore * (1 - topPercent/100) among the survivors. The
// input slice is not modified.
func Filter(hs []Hit, maxEValue, topPercent float64) ([]Hit, FilterStats) {
	var st FilterStats
	pass := make([]Hit, 0, len(hs))
	maxScore := 0.0
	for _, h := range hs {
		if h.EValue > maxEValue {
			st.EValue++
			continue
		}
		if len(pass) == 0 || h.BitScore > maxScore {
			maxScore = h.BitScore
		}
		pass = append(pass, h)
	}
	if len(pass) == 0 {
		return pass, st
	}

	if topPercent < 0 {
		topPercent = 0
	}
	floor := maxScore * (1 - topPercent/100)
	out := pass[:0]
	for _, h := range pass {
		if h.BitScore < floor {
			st.Top++
			continue
		}
		out = append(out, h)
	}
	return out, st
}
