// Package freqclass implements the Frequency Quality Classifier (C4):
// partitioning senders into "no frequency info" and "poor frequency info"
// classes. Each sender is classified once, over its QSOs on all bands.
package freqclass

import "github.com/N7DR/drscp/internal/qso"

const (
	// RunTimeRangeMinutes bounds the reciprocal cross-check window.
	RunTimeRangeMinutes = 5
	// FreqSkewKHz bounds the "good" frequency agreement window.
	FreqSkewKHz = 2
	// PoorFreqThreshold is the minimum good/total agreement ratio; below
	// it a sender is classified "poor".
	PoorFreqThreshold = 0.9
)

// NoFreqSenders returns the subset of allQSOs whose every logged QSO has
// qrg equal to its band's default edge frequency.
func NoFreqSenders(allQSOs map[string][]qso.QSO) map[string]bool {
	result := make(map[string]bool)
	for tcall, qsos := range allQSOs {
		if len(qsos) == 0 {
			continue
		}
		allEdge := true
		for _, q := range qsos {
			edge, ok := qso.BandEdgeFrequency(q.Band)
			if !ok || q.QRG != edge {
				allEdge = false
				break
			}
		}
		if allEdge {
			result[tcall] = true
		}
	}
	return result
}

// PoorFreqSenders returns the set of entrants whose cumulative good/total
// reciprocal frequency agreement (§4.4) falls below PoorFreqThreshold.
// Only entrants not already in noFreq participate in the cross-check.
func PoorFreqSenders(allQSOs map[string][]qso.QSO, entrants, noFreq map[string]bool) map[string]bool {
	good := make(map[string]int)
	total := make(map[string]int)

	for a := range entrants {
		if noFreq[a] {
			continue
		}
		for _, qa := range allQSOs[a] {
			b := qa.RCall
			if !entrants[b] || noFreq[b] {
				continue
			}
			qb, ok := findReciprocal(allQSOs[b], a, qa)
			if !ok {
				continue
			}
			total[a]++
			if absInt(qa.QRG-qb.QRG) < FreqSkewKHz {
				good[a]++
			}
		}
	}

	result := make(map[string]bool)
	for a := range entrants {
		if noFreq[a] {
			continue
		}
		t := total[a]
		if t == 0 {
			continue
		}
		if float64(good[a])/float64(t) < PoorFreqThreshold {
			result[a] = true
		}
	}
	return result
}

// findReciprocal finds any QSO in bQSOs where B logged a contact with A
// (rcall == a) on the same band within RunTimeRangeMinutes of qa.
func findReciprocal(bQSOs []qso.QSO, a string, qa qso.QSO) (qso.QSO, bool) {
	for _, qb := range bQSOs {
		if qb.RCall != a || qb.Band != qa.Band {
			continue
		}
		if absInt(qa.RelMinutes-qb.RelMinutes) < RunTimeRangeMinutes {
			return qb, true
		}
	}
	return qso.QSO{}, false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
