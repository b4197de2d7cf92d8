// Package timeindex implements the Time-Indexed QSO View (C5): O(1)
// lookup of the QSO range for a given relative minute, and O(log N)
// lookup for an arbitrary minute window, over a chronologically sorted
// QSO vector.
package timeindex

import (
	"golang.org/x/exp/slices"

	"github.com/N7DR/drscp/internal/qso"
)

// Index is a minute-bucketed view over a chronological QSO vector. Vec[k]
// holds the index of the first QSO whose RelMinutes >= k; Vec[MaxMin+1]
// is len(qsos) (the end sentinel).
type Index struct {
	qsos []qso.QSO
	vec  []int
}

// Build constructs an Index over qsos (must already be sorted by
// RelMinutes, ascending) for contest windows with the given maximum
// relative minute.
func Build(qsos []qso.QSO, maxRelMinutes int) Index {
	vec := make([]int, maxRelMinutes+2)
	i := 0
	for k := 0; k <= maxRelMinutes; k++ {
		for i < len(qsos) && qsos[i].RelMinutes < k {
			i++
		}
		vec[k] = i
	}
	vec[maxRelMinutes+1] = len(qsos)
	return Index{qsos: qsos, vec: vec}
}

// Minute returns the half-open range of QSOs whose RelMinutes == m.
func (idx Index) Minute(m int) []qso.QSO {
	if m < 0 || m+1 >= len(idx.vec) {
		return nil
	}
	return idx.qsos[idx.vec[m]:idx.vec[m+1]]
}

// Window returns the half-open range of QSOs whose RelMinutes fall in
// [lo, hi] inclusive.
func (idx Index) Window(lo, hi int) []qso.QSO {
	if lo < 0 {
		lo = 0
	}
	maxM := len(idx.vec) - 2
	if hi > maxM {
		hi = maxM
	}
	if lo > hi {
		return nil
	}
	return idx.qsos[idx.vec[lo]:idx.vec[hi+1]]
}

// Bounds implements get_bounds(t, t_min, t_max, skew, vec): the half-open
// range of QSOs with relative minute in [max(t-skew, tMin), min(t+skew,
// tMax)], found via binary search rather than the precomputed vec — this
// is the variant used where no Index is built over the vector, such as the
// per-rcall combined vectors of the pruner's Pass C.
func Bounds(qsos []qso.QSO, t, tMin, tMax, skew int) []qso.QSO {
	lo := t - skew
	if lo < tMin {
		lo = tMin
	}
	hi := t + skew
	if hi > tMax {
		hi = tMax
	}
	if lo > hi {
		return nil
	}
	start, _ := slices.BinarySearchFunc(qsos, lo, func(q qso.QSO, target int) int {
		return q.RelMinutes - target
	})
	end := start
	for end < len(qsos) && qsos[end].RelMinutes <= hi {
		end++
	}
	return qsos[start:end]
}
