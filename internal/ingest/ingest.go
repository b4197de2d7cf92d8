// Package ingest implements the Log Ingestor (C3): turning one directory
// of Cabrillo-ish log files into per-sender QSO sets, filtered to a
// contest window.
package ingest

import (
	"fmt"
	"sort"

	"github.com/N7DR/drscp/internal/contest"
	"github.com/N7DR/drscp/internal/logsource"
	"github.com/N7DR/drscp/internal/qso"
)

// Config bundles the run-wide knobs the ingestor needs: the minimum QSO
// count for automatic sender inclusion (-tl) and an optional sink for
// rejected QSO lines (-i).
type Config struct {
	TLLimit     int
	Diagnostics func(line string)
}

// Result is everything the Directory Pipeline (C7) needs from ingestion.
type Result struct {
	// AllQSOs maps each sender (tcall) to its QSOs in chronological order.
	AllQSOs map[string][]qso.QSO
	// Entrants is the set of tcalls whose log met the TLLimit threshold.
	Entrants map[string]bool
	// NValidLogs counts files that yielded at least one accepted QSO.
	NValidLogs int
}

// Dir ingests every file in p.Dir, keeping only QSOs within the contest
// window. It fails if zero files yielded a valid QSO (§4.3, §7).
func Dir(p contest.Params, cfg Config) (Result, error) {
	files, err := logsource.Files(p.Dir)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: reading directory %s: %w", p.Dir, err)
	}

	all := make(map[string][]qso.QSO)
	entrants := make(map[string]bool)
	nValid := 0

	for _, path := range files {
		fileQSOs := make(map[string][]qso.QSO)
		fileHadValid := false

		scanErr := logsource.Lines(path, func(line string) {
			if len(line) < 4 || line[:4] != "QSO:" {
				return
			}
			q, ok, parseErr := qso.ParseLine(line, qso.ParseOptions{Diagnostics: cfg.Diagnostics})
			if parseErr != nil || !ok {
				return
			}
			if !p.InWindow(q.Time) {
				return
			}
			q.RelMinutes = p.RelMinutes(q.Time)
			fileQSOs[q.TCall] = append(fileQSOs[q.TCall], q)
			fileHadValid = true
		})
		if scanErr != nil {
			continue // unreadable file: skip, matching "follows symlinks" best-effort enumeration
		}

		if fileHadValid {
			nValid++
		}
		for tcall, qsos := range fileQSOs {
			all[tcall] = append(all[tcall], qsos...)
			if len(all[tcall]) >= cfg.TLLimit {
				entrants[tcall] = true
			}
		}
	}

	if nValid == 0 {
		return Result{}, fmt.Errorf("ingest: %s contains zero valid logs", p.Dir)
	}

	for _, qsos := range all {
		sort.Slice(qsos, func(i, j int) bool { return qso.Less(qsos[i], qsos[j]) })
	}

	return Result{AllQSOs: all, Entrants: entrants, NValidLogs: nValid}, nil
}
