package sampling

import "sort"

// StratumCount pairs a stratum key with its population count. Order matters:
// the slice order is the tie-break for remainder redistribution, so callers
// must supply strata in a stable (first-seen) order.
type StratumCount struct {
	Key   string
	Count int
}

// AllocateProportional distributes target across strata in proportion to
// their population counts using the largest-remainder method. The returned
// slice is parallel to strata and sums to min(target, total population),
// subject to per-stratum capacity.
//
// The phases run in a fixed order: floor the raw shares, hand the rounding
// leftover to the largest fractional remainders (stable on ties), cap each
// stratum at its own population, then rebalance one unit at a time until the
// sum matches the target or no stratum can absorb more. Flooring alone
// systematically loses samples to rounding; the redistribution phases are not
// optional.
func AllocateProportional(strata []StratumCount, target int) []int {
	alloc := make([]int, len(strata))
	if len(strata) == 0 || target <= 0 {
		return alloc
	}

	total := 0
	for _, s := range strata {
		total += s.Count
	}
	if total == 0 {
		return alloc
	}
	if target > total {
		target = total
	}

	// Phase 1: floor the raw proportional shares.
	remainders := make([]float64, len(strata))
	floorSum := 0
	for i, s := range strata {
		share := float64(s.Count) / float64(total) * float64(target)
		alloc[i] = int(share)
		remainders[i] = share - float64(alloc[i])
		floorSum += alloc[i]
	}

	// Phase 2: award the leftover to the largest fractional remainders,
	// stable by original order for equal remainders.
	leftover := target - floorSum
	order := make([]int, len(strata))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for _, i := range order {
		if leftover <= 0 {
			break
		}
		alloc[i]++
		leftover--
	}

	// Phase 3: cap at stratum capacity.
	sum := 0
	for i, s := range strata {
		if alloc[i] > s.Count {
			alloc[i] = s.Count
		}
		sum += alloc[i]
	}

	// Phase 4: rebalance. Remove from the currently-largest allocation while
	// over target; add to the largest spare capacity while under target and
	// capacity remains. Ties resolve to the earliest stratum.
	for sum > target {
		best := -1
		for i := range alloc {
			if alloc[i] > 0 && (best < 0 || alloc[i] > alloc[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		alloc[best]--
		sum--
	}
	for sum < target {
		best := -1
		bestSpare := 0
		for i, s := range strata {
			if spare := s.Count - alloc[i]; spare > bestSpare {
				best = i
				bestSpare = spare
			}
		}
		if best < 0 {
			break
		}
		alloc[best]++
		sum++
	}

	return alloc
}
