package topsis

import (
	"math"
	"sort"
)

// assignRanks orders alternatives by descending closeness and applies
// standard competition ranking: members of a tie group share the rank of
// the group's first member and the next group skips by the group size.
// Ties are judged against the group's first member so they never chain.
func assignRanks(alts []AlternativeResult, tol float64) []int {
	order := make([]int, len(alts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return alts[order[a]].Closeness > alts[order[b]].Closeness
	})

	var headCC float64
	headRank := 0
	for pos, idx := range order {
		cc := alts[idx].Closeness
		if pos == 0 || math.Abs(headCC-cc) > tol {
			headCC = cc
			headRank = pos + 1
		}
		alts[idx].Rank = headRank
	}
	return order
}

// RankOrder applies competition ranking to arbitrary scores, higher first,
// and returns the rank of each entry in input order.
func RankOrder(scores []float64, tol float64) []int {
	alts := make([]AlternativeResult, len(scores))
	for i, s := range scores {
		alts[i] = AlternativeResult{Index: i, Closeness: s}
	}
	assignRanks(alts, tol)
	ranks := make([]int, len(scores))
	for i, a := range alts {
		ranks[i] = a.Rank
	}
	return ranks
}
