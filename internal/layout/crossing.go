package layout

import "sort"

// MinimizeCrossings reorders each layer (from the second onward) by the
// barycenter heuristic: nodes sort by the mean index of their inbound
// neighbors in the previous layer; nodes with no in-neighbors sort to the
// end. One sweep. This is a quality pass for emitters that render layers
// as ordered sequences; it does not affect graph semantics.
func MinimizeCrossings(layers [][]string, edges [][2]string) [][]string {
	out := make([][]string, len(layers))
	for i, l := range layers {
		out[i] = append([]string(nil), l...)
	}

	for li := 1; li < len(out); li++ {
		prevIndex := make(map[string]int, len(out[li-1]))
		for i, n := range out[li-1] {
			prevIndex[n] = i
		}

		type scored struct {
			node string
			mean float64
			has  bool
		}
		scores := make([]scored, len(out[li]))
		for i, n := range out[li] {
			sum, count := 0, 0
			for _, e := range edges {
				if e[1] != n {
					continue
				}
				if idx, ok := prevIndex[e[0]]; ok {
					sum += idx
					count++
				}
			}
			s := scored{node: n}
			if count > 0 {
				s.mean = float64(sum) / float64(count)
				s.has = true
			}
			scores[i] = s
		}

		sort.SliceStable(scores, func(i, j int) bool {
			if scores[i].has != scores[j].has {
				return scores[i].has
			}
			return scores[i].mean < scores[j].mean
		})
		for i, s := range scores {
			out[li][i] = s.node
		}
	}
	return out
}
