// Package callanalyzer decides whether one callsign is a plausible
// mis-copy ("bust") of another, and builds symmetric bust maps over a
// set of callsigns (C1).
package callanalyzer

import (
	"github.com/agnivade/levenshtein"
)

// IsBust reports whether candidate is a plausible bust of target.
// target and candidate must be distinct and non-empty; callers that hold
// a set of validated callsigns (see internal/qso) already guarantee this.
func IsBust(target, candidate string) bool {
	if target == candidate || target == "" || candidate == "" {
		return false
	}

	lt, lc := len(target), len(candidate)
	diff := lt - lc
	if diff < 0 {
		diff = -diff
	}
	if diff >= 2 {
		return false
	}

	if diff == 1 {
		// Cheap pre-filter: rule 2's substring/interior-delete bust is a
		// single edit, so anything the library puts at distance >= 2
		// cannot satisfy it. This lets possible_busts skip the
		// substring/delete check for the vast majority of unrelated
		// pairs. Rule 3 (equal-length) is handled separately below,
		// since an adjacent swap of two distinct characters is itself a
		// distance-2 edit and would be wrongly excluded by this filter.
		if levenshtein.ComputeDistance(target, candidate) >= 2 {
			return false
		}
		long, short := target, candidate
		if lc > lt {
			long, short = candidate, target
		}
		return containsSubstring(long, short) || deleteInteriorMatches(long, short)
	}

	return oneCharDiffers(target, candidate) || adjacentSwapMatches(target, candidate)
}

func containsSubstring(long, short string) bool {
	return indexOf(long, short) >= 0
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	if m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

// deleteInteriorMatches reports whether deleting exactly one interior
// character of long (position 1 .. len(long)-2, 0-indexed) yields short.
func deleteInteriorMatches(long, short string) bool {
	for pos := 1; pos <= len(long)-2; pos++ {
		if long[:pos]+long[pos+1:] == short {
			return true
		}
	}
	return false
}

// oneCharDiffers reports whether a and b (equal length) differ in exactly
// one position.
func oneCharDiffers(a, b string) bool {
	diffs := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			diffs++
			if diffs > 1 {
				return false
			}
		}
	}
	return diffs == 1
}

// adjacentSwapMatches reports whether swapping two adjacent characters of
// target yields candidate.
func adjacentSwapMatches(target, candidate string) bool {
	for i := 0; i+1 < len(target); i++ {
		if target[i] == target[i+1] {
			continue
		}
		swapped := target[:i] + string(target[i+1]) + string(target[i]) + target[i+2:]
		if swapped == candidate {
			return true
		}
	}
	return false
}

// PossibleBusts builds a symmetric mapping from each call in calls to the
// set of other calls in calls that are busts of it. A call with no busts
// has no entry in the returned map. Complexity is O(|calls|^2).
func PossibleBusts(calls []string) map[string]map[string]bool {
	result := make(map[string]map[string]bool)
	for i := 0; i < len(calls); i++ {
		for j := i + 1; j < len(calls); j++ {
			a, b := calls[i], calls[j]
			if IsBust(a, b) {
				addBust(result, a, b)
				addBust(result, b, a)
			}
		}
	}
	return result
}

func addBust(m map[string]map[string]bool, call, bust string) {
	set, ok := m[call]
	if !ok {
		set = make(map[string]bool)
		m[call] = set
	}
	set[bust] = true
}
