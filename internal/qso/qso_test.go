package qso

import (
	"testing"
	"time"
)

func TestBandFromQRG(t *testing.T) {
	tests := []struct {
		qrg  int
		want Band
	}{
		{1800, Band160},
		{2000, Band160},
		{3500, Band80},
		{7000, Band40},
		{7300, Band40}, // band-edge, still retained on the expected band
		{14000, Band20},
		{21000, Band15},
		{28000, Band10},
		{29700, Band10},
		{29701, BandBad},
		{0, BandBad},
	}
	for _, tt := range tests {
		if got := BandFromQRG(tt.qrg); got != tt.want {
			t.Errorf("BandFromQRG(%d) = %v; want %v", tt.qrg, got, tt.want)
		}
	}
}

func TestParseLine_Valid(t *testing.T) {
	line := "QSO: 14050 CW 2026-07-30 1200 W1AW 599 001 N7DR 599 002"
	q, ok, err := ParseLine(line, ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected line to parse")
	}
	if q.TCall != "W1AW" || q.RCall != "N7DR" {
		t.Errorf("got tcall=%s rcall=%s", q.TCall, q.RCall)
	}
	if q.Band != Band20 {
		t.Errorf("got band %v, want Band20", q.Band)
	}
	if q.QRG != 14050 {
		t.Errorf("got qrg %d", q.QRG)
	}
	want := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	if !q.Time.Equal(want) {
		t.Errorf("got time %v, want %v", q.Time, want)
	}
}

func TestParseLine_StripsQRPSuffix(t *testing.T) {
	line := "QSO: 14050 CW 2026-07-30 1200 W1AW/QRP 599 001 N7DR/QRPP 599 002"
	q, ok, err := ParseLine(line, ParseOptions{})
	if err != nil || !ok {
		t.Fatalf("expected valid parse, got ok=%v err=%v", ok, err)
	}
	if q.TCall != "W1AW" || q.RCall != "N7DR" {
		t.Errorf("QRP/QRPP suffixes not stripped: tcall=%s rcall=%s", q.TCall, q.RCall)
	}
}

func TestParseLine_RejectsShortFieldVector(t *testing.T) {
	var rejected string
	opts := ParseOptions{Diagnostics: func(line string) { rejected = line }}
	line := "QSO: 14050 CW 2026-07-30 1200 W1AW"
	_, ok, err := ParseLine(line, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected short field vector to be rejected")
	}
	if rejected != line {
		t.Errorf("diagnostics did not receive offending line")
	}
}

func TestParseLine_RejectsSelfQSO(t *testing.T) {
	line := "QSO: 14050 CW 2026-07-30 1200 W1AW 599 001 W1AW 599 002"
	_, ok, err := ParseLine(line, ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected tcall == rcall to be rejected")
	}
}

func TestParseLine_RejectsBadFrequency(t *testing.T) {
	line := "QSO: 99999 CW 2026-07-30 1200 W1AW 599 001 N7DR 599 002"
	_, ok, err := ParseLine(line, ParseOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected out-of-band frequency to be rejected")
	}
}

func TestLess_OrdersByTimeThenID(t *testing.T) {
	t0 := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	a := QSO{ID: 2, Time: t0}
	b := QSO{ID: 1, Time: t0.Add(time.Minute)}
	if !Less(a, b) {
		t.Errorf("expected earlier time to sort first regardless of id")
	}

	c := QSO{ID: 1, Time: t0}
	d := QSO{ID: 2, Time: t0}
	if !Less(c, d) {
		t.Errorf("expected lower id to sort first on a tied time")
	}
}

func TestIDsAreUniqueAndMonotonic(t *testing.T) {
	line := "QSO: 14050 CW 2026-07-30 1200 W1AW 599 001 N7DR 599 002"
	q1, ok1, _ := ParseLine(line, ParseOptions{})
	q2, ok2, _ := ParseLine(line, ParseOptions{})
	if !ok1 || !ok2 {
		t.Fatalf("expected both parses to succeed")
	}
	if q1.ID == q2.ID {
		t.Errorf("expected distinct ids, got %d twice", q1.ID)
	}
}
