package policy

import "math/rand"

// choiceSample draws count entities from matched without replacement. If
// count exceeds len(matched), the entire matched set is returned. When
// weightBy names a numeric attribute present on the candidates, picks are
// weighted by that attribute; otherwise the draw is uniform.
func choiceSample(matched []candidate, count int, weightBy string, rng *rand.Rand) []string {
	if count >= len(matched) {
		return idsOf(matched)
	}
	if count <= 0 {
		return nil
	}

	pool := append([]candidate{}, matched...)
	weights := make([]float64, len(pool))
	weighted := weightBy != ""
	for i, c := range pool {
		if weighted {
			w, ok := asFloat(c.attrs[weightBy])
			if !ok || w < 0 {
				w = 0
			}
			weights[i] = w
		} else {
			weights[i] = 1
		}
	}

	out := make([]string, 0, count)
	for len(out) < count && len(pool) > 0 {
		idx := weightedPick(weights, rng)
		out = append(out, pool[idx].id)
		pool = append(pool[:idx], pool[idx+1:]...)
		weights = append(weights[:idx], weights[idx+1:]...)
	}
	return out
}

// weightedPick draws a single index proportional to weights. If every
// weight is zero (e.g. a missing weight_by attribute on all candidates) it
// falls back to a uniform draw so the selection never stalls.
func weightedPick(weights []float64, rng *rand.Rand) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	draw := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if draw < cum {
			return i
		}
	}
	return len(weights) - 1
}
