package deflate

import (
	"errors"
	"sort"
)

// ErrPackageMergeInfeasible is returned when more symbols have non-zero
// weight than a code of the requested maximum length can represent
// (equivalently: more than 2^maxLength non-zero weights).
var ErrPackageMergeInfeasible = errors.New("deflate: package-merge infeasible for given max length")

// coin is a package-merge "coin": a candidate merge of one or more original
// weights, tracking which original symbol indices it covers so that, once a
// coin is selected, every index it covers gets credited one unit of code
// length at that level.
type coin struct {
	weight  uint64
	indices []int
}

// packageMerge assigns length-limited Huffman code lengths to weights using
// the Larmore-Hirschberg algorithm: build levels of "coins" bottom-up,
// select the cheapest prefix of each level top-down, and count how many
// singleton coins touch each index across all levels.
func packageMerge(weights []uint64, maxLength int) ([]uint8, error) {
	n := len(weights)
	lengths := make([]uint8, n)

	var nonZero []int
	for i, w := range weights {
		if w > 0 {
			nonZero = append(nonZero, i)
		}
	}
	m := len(nonZero)
	if m == 0 {
		return lengths, nil
	}
	if m == 1 {
		lengths[nonZero[0]] = 1
		return lengths, nil
	}
	if m > 1<<uint(maxLength) {
		return nil, ErrPackageMergeInfeasible
	}

	// Level 0: one singleton coin per non-zero weight, sorted ascending.
	level0 := make([]coin, m)
	for i, idx := range nonZero {
		level0[i] = coin{weight: weights[idx], indices: []int{idx}}
	}
	sort.Slice(level0, func(a, b int) bool { return level0[a].weight < level0[b].weight })

	levels := make([][]coin, maxLength)
	levels[0] = level0
	for l := 1; l < maxLength; l++ {
		prev := levels[l-1]
		var merged []coin
		for i := 0; i+1 < len(prev); i += 2 {
			merged = append(merged, coin{
				weight:  prev[i].weight + prev[i+1].weight,
				indices: append(append([]int{}, prev[i].indices...), prev[i+1].indices...),
			})
		}
		cur := append(merged, level0...)
		sort.SliceStable(cur, func(a, b int) bool { return cur[a].weight < cur[b].weight })
		levels[l] = cur
	}

	// Top level: take the cheapest 2m-2 coins.
	selectSize := 2*m - 2
	selected := make([][]coin, maxLength)
	top := levels[maxLength-1]
	if selectSize > len(top) {
		selectSize = len(top)
	}
	selected[maxLength-1] = top[:selectSize]

	for l := maxLength - 1; l > 0; l-- {
		numMerged := 0
		for _, c := range selected[l] {
			if len(c.indices) > 1 {
				numMerged++
			}
		}
		size := 2 * numMerged
		lvl := levels[l-1]
		if size > len(lvl) {
			size = len(lvl)
		}
		selected[l-1] = lvl[:size]
	}

	for l := 0; l < maxLength; l++ {
		for _, c := range selected[l] {
			if len(c.indices) == 1 {
				lengths[c.indices[0]]++
			}
		}
	}

	return lengths, nil
}
