package sampling

import "math"

// SimpleRandomIndices draws k distinct indices from [0,n) by Fisher-Yates
// shuffling the full index range with the generator and taking the first k.
// The swap order (i from last to first, partner uniform in [0,i]) is part of
// the determinism contract: it fixes which rows a given seed selects.
func SimpleRandomIndices(rng *Mulberry32, n, k int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
	if k > n {
		k = n
	}
	return idx[:k:k]
}

// SystematicIndices draws k indices from [0,n) at a fixed interval. When
// randomStart is set the walk begins at a random offset within the interval;
// otherwise it begins at zero. An explicit positive step replaces the
// computed interval; a step walk ends before it would revisit a position, so
// a step that wraps the population yields fewer than k indices rather than
// duplicate draws. k >= n degenerates to full coverage: the whole range in
// original order, no generator consumed.
func SystematicIndices(rng *Mulberry32, n, k int, randomStart bool, step int) []int {
	if n <= 0 || k <= 0 {
		return nil
	}
	if k >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	interval := step
	if interval <= 0 {
		interval = int(math.Ceil(float64(n) / float64(k)))
	}
	offset := 0
	if randomStart {
		offset = rng.Intn(interval)
	}

	if step > 0 {
		// The walk offset, offset+step, ... mod n returns to its start
		// after n/gcd(n,step) hops; every index past that is a repeat.
		if distinct := n / gcd(n, step); k > distinct {
			k = distinct
		}
		out := make([]int, 0, k)
		for i := 0; i < k; i++ {
			out = append(out, (offset+i*step)%n)
		}
		return out
	}

	out := make([]int, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, (i*n/k+offset)%n)
	}
	return out
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
