// Package pipeline implements the Directory Pipeline (C7): ingest one
// contest's logs, classify frequency quality, fan out one Band Pruner per
// band, and return a call->appearance-count map.
package pipeline

import (
	"golang.org/x/sync/errgroup"

	"github.com/N7DR/drscp/internal/contest"
	"github.com/N7DR/drscp/internal/freqclass"
	"github.com/N7DR/drscp/internal/ingest"
	"github.com/N7DR/drscp/internal/pruner"
	"github.com/N7DR/drscp/internal/qso"
)

// Config carries the knobs a pipeline run needs beyond the contest
// parameters themselves.
type Config struct {
	TLLimit     int
	CutoffLimit int
	Diagnostics func(line string)
	// Trace, if non-empty, is a callsign to report bust-removal decisions
	// for (the "-tr" CLI flag); TraceFunc receives each pass name and QSO
	// that named it.
	Trace     string
	TraceFunc func(pass string, q qso.QSO)
}

// Run ingests p.Dir and returns the call->appearance-count map this
// contest contributes to the global accumulator (§4.7).
func Run(p contest.Params, cfg Config) (map[string]int, error) {
	result, err := ingest.Dir(p, ingest.Config{TLLimit: cfg.TLLimit, Diagnostics: cfg.Diagnostics})
	if err != nil {
		return nil, err
	}

	allQSOs := result.AllQSOs
	entrants := result.Entrants

	counts := make(map[string]int)
	pruned := make(map[string][]qso.QSO, len(allQSOs))

	for tcall, qsos := range allQSOs {
		var kept []qso.QSO
		for _, q := range qsos {
			if entrants[q.RCall] {
				counts[q.RCall]++
				continue
			}
			kept = append(kept, q)
		}
		if len(kept) > 0 {
			pruned[tcall] = kept
		}
	}

	noFreq := freqclass.NoFreqSenders(allQSOs)
	poorFreq := freqclass.PoorFreqSenders(allQSOs, entrants, noFreq)

	allByBand := splitByBand(allQSOs)
	prunedByBand := splitByBand(pruned)

	returned := make([]map[string]bool, len(qso.AllBands))
	g := new(errgroup.Group)
	for i, band := range qso.AllBands {
		i, band := i, band
		prunedBand, havePruned := prunedByBand[band]
		allBand, haveAll := allByBand[band]
		if !havePruned || !haveAll {
			continue
		}
		g.Go(func() error {
			returned[i] = pruner.Prune(pruner.Input{
				Pruned:        prunedBand,
				All:           allBand,
				Entrants:      entrants,
				NoFreq:        noFreq,
				PoorFreq:      poorFreq,
				MaxRelMinutes: p.MaxRelMinutes(),
				CutoffLimit:   cfg.CutoffLimit,
				Trace:         cfg.Trace,
				TraceFunc:     cfg.TraceFunc,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	returnedCalls := make(map[string]bool)
	for _, set := range returned {
		for call := range set {
			returnedCalls[call] = true
		}
	}

	for _, qsos := range allQSOs {
		for _, q := range qsos {
			if returnedCalls[q.RCall] {
				counts[q.RCall]++
			}
		}
	}

	return counts, nil
}

func splitByBand(m map[string][]qso.QSO) map[qso.Band]map[string][]qso.QSO {
	out := make(map[qso.Band]map[string][]qso.QSO)
	for tcall, qsos := range m {
		for _, q := range qsos {
			byTcall, ok := out[q.Band]
			if !ok {
				byTcall = make(map[string][]qso.QSO)
				out[q.Band] = byTcall
			}
			byTcall[tcall] = append(byTcall[tcall], q)
		}
	}
	return out
}
