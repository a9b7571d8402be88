// internal/consensus/intersect.go
package consensus

// Intersect walks equal-length rows position by position (coarse→fine) and
// stops at the first position where they disagree. Positions where every row
// holds the gap value are skipped without stopping. It returns the common
// prefix, its depth (one past the last agreed non-gap position) and whether
// the rows agreed everywhere. No rows means depth 0.
func Intersect[K comparable](rows [][]K, gap K) (common []K, depth int, agreed bool) {
	if len(rows) == 0 {
		return nil, 0, true
	}
	width := len(rows[0])
	for _, r := range rows[1:] {
		if len(r) < width {
			width = len(r)
		}
	}
	agreed = true
	common = make([]K, 0, width)
	for i := 0; i < width; i++ {
		v := rows[0][i]
		same := true
		for _, r := range rows[1:] {
			if r[i] != v {
				same = false
				break
			}
		}
		if !same {
			agreed = false
			break
		}
		common = append(common, v)
		if v != gap {
			depth = i + 1
		}
	}
	return common[:depth], depth, agreed
}
