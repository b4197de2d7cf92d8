// Package contest holds contest parameters: the directory to ingest, the
// contest window, and the derived bounds operations throughout the
// pipeline rely on.
package contest

import "time"

// Params describes one contest to process: its log directory, start time,
// and duration. Derived bounds follow directly: the accepted QSO window is
// the inclusive/half-open interval [Start, Start+Hours*time.Hour), and the
// maximum relative minute is Hours*60-1.
type Params struct {
	Dir   string
	Start time.Time
	Hours int
}

// End returns the exclusive end of the contest window.
func (p Params) End() time.Time {
	return p.Start.Add(time.Duration(p.Hours) * time.Hour)
}

// MaxRelMinutes is the maximum valid relative-minute value, inclusive.
func (p Params) MaxRelMinutes() int {
	return p.Hours*60 - 1
}

// InWindow reports whether t falls in [Start, End()).
func (p Params) InWindow(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End())
}

// RelMinutes converts an absolute time within the contest window to a
// relative minute count from Start. Callers must only call this for times
// that satisfy InWindow.
func (p Params) RelMinutes(t time.Time) int {
	return int(t.Sub(p.Start).Minutes())
}
