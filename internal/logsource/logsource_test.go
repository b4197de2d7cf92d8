package logsource

import (
	"os"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"qso:\t14050  cw\t 2026-07-30  1200", "QSO: 14050 CW 2026-07-30 1200"},
		{"  trim me  ", "TRIM ME"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestScanLines_SkipsBlankLines(t *testing.T) {
	r := strings.NewReader("QSO: ONE\n\n   \nQSO: TWO\n")
	var got []string
	if err := ScanLines(r, func(line string) { got = append(got, line) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "QSO: ONE" || got[1] != "QSO: TWO" {
		t.Errorf("got %v", got)
	}
}

func TestFiles_ListsRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/a.log", []byte("QSO: A"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(dir+"/b.log", []byte("QSO: B"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(dir+"/subdir", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := Files(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 regular files, got %d: %v", len(files), files)
	}
}
