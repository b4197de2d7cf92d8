// Package pruner implements the Band Pruner (C6): per-band bust detection
// and run detection, producing the set of validated received callsigns
// for one band.
package pruner

import (
	"sort"

	"github.com/N7DR/drscp/internal/callanalyzer"
	"github.com/N7DR/drscp/internal/qso"
	"github.com/N7DR/drscp/internal/timeindex"
)

const (
	// ClockSkewMinutes bounds how far apart two logged times may be and
	// still be considered the same contact.
	ClockSkewMinutes = 2
	// FreqSkewKHz bounds frequency agreement between two logged QSOs.
	FreqSkewKHz = 2
	// RunTimeRangeMinutes bounds the window searched for a running
	// station's corroborating activity.
	RunTimeRangeMinutes = 5
	// CutoffLimit is the default minimum surviving-occurrence count
	// (inclusive) a received call must exceed to survive Pass D.
	CutoffLimit = 1
)

// Input bundles everything one Band Pruner invocation needs.
type Input struct {
	Pruned        map[string][]qso.QSO // working copy, winnowed in place (logically — a fresh copy is produced)
	All           map[string][]qso.QSO // read-only
	Entrants      map[string]bool      // tcalls gated by -tl (§4.3); Pass B iterates only these
	NoFreq        map[string]bool
	PoorFreq      map[string]bool
	MaxRelMinutes int
	CutoffLimit   int // 0 means use CutoffLimit
	// Trace, if non-empty, reports removal of any QSO naming this
	// callsign (either side) via TraceFunc, supporting the "-tr" CLI
	// trace flag.
	Trace     string
	TraceFunc func(pass string, q qso.QSO)
}

// Prune runs passes A-D and returns the set of received callsigns that
// survive in this band. It never fails on empty input; callers should
// skip calling Prune for bands absent from either Pruned or All.
func Prune(in Input) map[string]bool {
	cutoff := in.CutoffLimit
	if cutoff == 0 {
		cutoff = CutoffLimit
	}

	p := flatten(in.Pruned)
	all := flatten(in.All)
	allTcalls := make([]string, 0, len(in.Entrants))
	for t := range in.All {
		if in.Entrants[t] {
			allTcalls = append(allTcalls, t)
		}
	}

	removed := make(map[uint64]bool)
	mark := func(pass string, q qso.QSO) {
		removed[q.ID] = true
		if in.TraceFunc != nil && in.Trace != "" && (q.TCall == in.Trace || q.RCall == in.Trace) {
			in.TraceFunc(pass, q)
		}
	}

	passA(p, all, in.MaxRelMinutes, in.NoFreq, in.PoorFreq, mark)
	p = compact(p, removed)

	// Pass B treats a call as lacking good frequency info when it is in
	// either NoFreq or PoorFreq.
	badFreq := make(map[string]bool, len(in.NoFreq)+len(in.PoorFreq))
	for c := range in.NoFreq {
		badFreq[c] = true
	}
	for c := range in.PoorFreq {
		badFreq[c] = true
	}
	passB(p, allTcalls, in.All, in.Entrants, badFreq, mark)
	p = compact(p, removed)

	passC(p, in.NoFreq, removed, mark)
	p = compact(p, removed)

	return passD(p, cutoff)
}

func flatten(m map[string][]qso.QSO) []qso.QSO {
	var out []qso.QSO
	for _, qsos := range m {
		out = append(out, qsos...)
	}
	sort.Slice(out, func(i, j int) bool { return qso.Less(out[i], out[j]) })
	return out
}

func compact(qsos []qso.QSO, removed map[uint64]bool) []qso.QSO {
	out := qsos[:0:0]
	for _, q := range qsos {
		if !removed[q.ID] {
			out = append(out, q)
		}
	}
	return out
}

func lenient(q1, q2 qso.QSO, noFreq, poorFreq map[string]bool) bool {
	if noFreq[q1.TCall] || poorFreq[q1.TCall] || noFreq[q2.TCall] || poorFreq[q2.TCall] {
		return true
	}
	return absInt(q1.QRG-q2.QRG) <= FreqSkewKHz
}

func freqMatchStrict(q1, q2 qso.QSO, noFreq map[string]bool) bool {
	if noFreq[q1.TCall] || noFreq[q2.TCall] {
		return false
	}
	return absInt(q1.QRG-q2.QRG) <= FreqSkewKHz
}

// passA marks, for each surviving received QSO rq, removal when some QSO
// tq elsewhere in the same pipeline's all-QSOs vector shows a time- and
// frequency-consistent corroborating bust in either direction (§4.6 Pass A).
func passA(p, all []qso.QSO, maxRelMinutes int, noFreq, poorFreq map[string]bool, mark func(string, qso.QSO)) {
	idx := timeindex.Build(all, maxRelMinutes)
	for _, rq := range p {
		window := idx.Window(maxInt(rq.RelMinutes-ClockSkewMinutes, 0), rq.RelMinutes+ClockSkewMinutes)
		for _, tq := range window {
			if !lenient(tq, rq, noFreq, poorFreq) {
				continue
			}
			if callanalyzer.IsBust(tq.TCall, rq.RCall) && tq.RCall == rq.TCall {
				mark("A", rq)
				break
			}
			if callanalyzer.IsBust(rq.TCall, tq.RCall) && callanalyzer.IsBust(tq.TCall, rq.RCall) {
				mark("A", rq)
				break
			}
		}
	}
}

// passB marks removal when rq's received call is a bust of some entrant
// that was running at the time and frequency of rq (§4.6 Pass B).
// allTcalls is already gated to true entrants (-tl); non-entrant runners
// are Pass C's concern, not Pass B's.
func passB(p []qso.QSO, allTcalls []string, allByTcall map[string][]qso.QSO, entrants, noFreq map[string]bool, mark func(string, qso.QSO)) {
	for _, rq := range p {
		for _, t := range allTcalls {
			if !callanalyzer.IsBust(t, rq.RCall) {
				continue
			}
			if isStationRunning(t, rq.RelMinutes, rq.QRG, rq.TCall, allByTcall, entrants, noFreq) {
				mark("B", rq)
				break
			}
		}
	}
}

// isStationRunning reports whether call is a running entrant at time t,
// frequency f: either call's own log shows activity within skew, or (when
// call is in noFreq, which Prune fills with every sender lacking good
// frequency info, no-freq and poor-freq alike) some other entrant logged a
// contact with call nearby, ignoring corroboration from ignoreCall. call must be
// a true entrant (§4.3's -tl gate), not merely a tcall present in allByTcall.
func isStationRunning(call string, t, f int, ignoreCall string, allByTcall map[string][]qso.QSO, entrants, noFreq map[string]bool) bool {
	if !entrants[call] {
		return false
	}
	ownLog := allByTcall[call]
	if !noFreq[call] {
		for _, q := range ownLog {
			if absInt(q.RelMinutes-t) <= ClockSkewMinutes && absInt(q.QRG-f) <= FreqSkewKHz {
				return true
			}
		}
		return false
	}
	for other, qsos := range allByTcall {
		if other == ignoreCall || !entrants[other] {
			continue
		}
		for _, q := range qsos {
			if q.RCall != call {
				continue
			}
			if absInt(q.RelMinutes-t) <= ClockSkewMinutes && absInt(q.QRG-f) <= FreqSkewKHz {
				return true
			}
		}
	}
	return false
}

// passC builds rcall-keyed pseudo-logs from the surviving vector, groups
// each rcall with its possible busts, and marks removal when a QSO's
// window shows activity for a different rcall with strict frequency
// agreement (§4.6 Pass C).
func passC(p []qso.QSO, noFreq map[string]bool, removed map[uint64]bool, mark func(string, qso.QSO)) {
	byRcall := make(map[string][]qso.QSO)
	for _, q := range p {
		byRcall[q.RCall] = append(byRcall[q.RCall], q)
	}
	rcalls := make([]string, 0, len(byRcall))
	for r, qsos := range byRcall {
		sort.Slice(qsos, func(i, j int) bool { return qso.Less(qsos[i], qsos[j]) })
		byRcall[r] = qsos
		rcalls = append(rcalls, r)
	}

	busts := callanalyzer.PossibleBusts(rcalls)

	counts := make(map[string]int, len(byRcall))
	for r, qsos := range byRcall {
		counts[r] = len(qsos)
	}
	sort.Slice(rcalls, func(i, j int) bool {
		if counts[rcalls[i]] != counts[rcalls[j]] {
			return counts[rcalls[i]] > counts[rcalls[j]]
		}
		return rcalls[i] < rcalls[j]
	})

	for _, rcall := range rcalls {
		combined := append([]qso.QSO{}, byRcall[rcall]...)
		for other := range busts[rcall] {
			combined = append(combined, byRcall[other]...)
		}
		sort.Slice(combined, func(i, j int) bool { return qso.Less(combined[i], combined[j]) })

		for _, rq := range byRcall[rcall] {
			if removed[rq.ID] {
				continue
			}
			window := timeindex.Bounds(combined, rq.RelMinutes, rq.RelMinutes-RunTimeRangeMinutes, rq.RelMinutes+RunTimeRangeMinutes, RunTimeRangeMinutes)
			for _, other := range window {
				if other.RCall == rcall {
					continue
				}
				if freqMatchStrict(other, rq, noFreq) {
					mark("C", rq)
					break
				}
			}
		}
	}
}

// passD recomputes the per-rcall histogram over surviving QSOs and drops
// every QSO whose rcall count is <= cutoff (§4.6 Pass D), returning the
// set of received calls that remain.
func passD(p []qso.QSO, cutoff int) map[string]bool {
	counts := make(map[string]int)
	for _, q := range p {
		counts[q.RCall]++
	}
	result := make(map[string]bool)
	for rcall, n := range counts {
		if n > cutoff {
			result[rcall] = true
		}
	}
	return result
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
