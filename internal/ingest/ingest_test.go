package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/N7DR/drscp/internal/contest"
)

func writeLog(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testContest() contest.Params {
	return contest.Params{Start: time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC), Hours: 24}
}

func TestDir_MergesAndSetsEntrants(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "w1aw.log", "QSO: 14050 CW 2026-07-30 1200 W1AW 599 001 N7DR 599 002\n"+
		"QSO: 14050 CW 2026-07-30 1201 W1AW 599 001 N7DR 599 002\n")
	writeLog(t, dir, "n7dr.log", "QSO: 14050 CW 2026-07-30 1200 N7DR 599 001 W1AW 599 002\n")

	p := testContest()
	p.Dir = dir
	result, err := Dir(p, Config{TLLimit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NValidLogs != 2 {
		t.Errorf("NValidLogs = %d; want 2", result.NValidLogs)
	}
	if !result.Entrants["W1AW"] {
		t.Errorf("W1AW logged 2 QSOs and should be an entrant at TLLimit=2")
	}
	if result.Entrants["N7DR"] {
		t.Errorf("N7DR logged 1 QSO and should not be an entrant at TLLimit=2")
	}
	if len(result.AllQSOs["W1AW"]) != 2 {
		t.Errorf("expected 2 QSOs for W1AW, got %d", len(result.AllQSOs["W1AW"]))
	}
}

func TestDir_FiltersOutOfWindow(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "log.txt", "QSO: 14050 CW 2026-07-29 2359 W1AW 599 001 N7DR 599 002\n")

	p := testContest()
	p.Dir = dir
	_, err := Dir(p, Config{TLLimit: 1})
	if err == nil {
		t.Fatalf("expected an error: a log entirely outside the contest window yields zero valid logs")
	}
}

func TestDir_FailsOnEmptyCorpus(t *testing.T) {
	dir := t.TempDir()
	p := testContest()
	p.Dir = dir
	if _, err := Dir(p, Config{TLLimit: 1}); err == nil {
		t.Fatalf("expected an error for a directory with zero valid logs")
	}
}

func TestDir_DiagnosticsReceivesRejectedLines(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "log.txt", "QSO: 14050 CW 2026-07-30 1200 W1AW 599 001 N7DR 599 002\n"+
		"QSO: bad line too short\n")

	var rejected []string
	p := testContest()
	p.Dir = dir
	_, err := Dir(p, Config{TLLimit: 1, Diagnostics: func(line string) { rejected = append(rejected, line) }})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rejected) != 1 {
		t.Errorf("expected 1 rejected line, got %v", rejected)
	}
}
