// Command scpgen is the thin command-line shell spec.md §1 scopes out of
// the core design: it parses flags, builds the contest list, and hands
// everything to the scheduler (internal/scheduler). It uses the standard
// flag package with single-dash multi-letter flags (-dir, -start, -hrs,
// ...) rather than a GNU-style flag library, since GNU shorthand-cluster
// parsing would misread them.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/N7DR/drscp/internal/callorder"
	"github.com/N7DR/drscp/internal/config"
	"github.com/N7DR/drscp/internal/contest"
	"github.com/N7DR/drscp/internal/qso"
	"github.com/N7DR/drscp/internal/scheduler"
)

var (
	version = "dev"
	commit  = "none"
)

// cliFlags holds the parsed §6 command-line flags; its FlagSet records
// which ones were explicitly set, so config-file values only apply to
// flags the user did not pass.
type cliFlags struct {
	fs *flag.FlagSet

	dir        string
	start      string
	hours      int
	configFile string
	verbose    bool
	cutoff     int
	parallel   int
	trace      string
	tlLimit    int
	extended   bool
	xpercent   int
	echoBad    bool
}

func newCLIFlags() *cliFlags {
	c := &cliFlags{fs: flag.NewFlagSet("scpgen", flag.ContinueOnError)}
	c.fs.StringVar(&c.dir, "dir", "", "log directory, or @file naming a contest list (required)")
	c.fs.StringVar(&c.start, "start", "", "contest start, YYYY-MM-DD[THH[:MM[:SS]]] (required unless -dir is an @file with per-line timestamps)")
	c.fs.IntVar(&c.hours, "hrs", 0, "contest duration in hours")
	c.fs.StringVar(&c.configFile, "config", "", "configuration file (default $HOME/.scpgen.yaml)")
	c.fs.BoolVar(&c.verbose, "v", false, "verbose progress to stdout")
	c.fs.IntVar(&c.cutoff, "l", 0, "cutoff: minimum surviving occurrence count (default 1)")
	c.fs.IntVar(&c.parallel, "p", 0, "parallelism: concurrent contest pipelines (default 1)")
	c.fs.StringVar(&c.trace, "tr", "", "trace bust-removal decisions for one callsign")
	c.fs.IntVar(&c.tlLimit, "tl", 0, "minimum QSOs for automatic sender inclusion (default 1)")
	c.fs.BoolVar(&c.extended, "x", false, "emit XSCP (call and count) instead of SCP")
	c.fs.IntVar(&c.xpercent, "xpc", 0, "retain top n% of appearance mass (default 100)")
	c.fs.BoolVar(&c.echoBad, "i", false, "echo bad QSO lines to the diagnostics stream")
	return c
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("scpgen: %v", err)
	}
}

func run(args []string) error {
	cli := newCLIFlags()
	if err := cli.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(cli.configFile)
	if err != nil {
		return err
	}
	applyOverrides(cli, cfg)

	if cli.dir == "" {
		return fmt.Errorf("-dir is required")
	}

	contests, err := buildContestList(cli.dir, cli.start, cli.hours)
	if err != nil {
		return fmt.Errorf("building contest list: %w", err)
	}

	if cfg.Verbose {
		log.Printf("scpgen %s (%s): %d contest(s), parallelism=%d", version, commit, len(contests), cfg.Parallelism)
	}

	var diagnostics func(line string)
	if cfg.EchoBadQSOs {
		diagnostics = func(line string) { fmt.Fprintln(os.Stderr, "REJECTED:", line) }
	}

	var traceFunc func(pass string, q qso.QSO)
	if cfg.Trace != "" {
		traceFunc = func(pass string, q qso.QSO) {
			log.Printf("trace %s: pass %s removed QSO id=%d tcall=%s rcall=%s band=%s qrg=%d",
				cfg.Trace, pass, q.ID, q.TCall, q.RCall, q.Band, q.QRG)
		}
	}

	counts, err := scheduler.Run(context.Background(), contests, scheduler.Config{
		Parallelism: cfg.Parallelism,
		TLLimit:     cfg.TLLimit,
		CutoffLimit: cfg.CutoffLimit,
		Diagnostics: diagnostics,
		Trace:       cfg.Trace,
		TraceFunc:   traceFunc,
	})
	if err != nil {
		return err
	}

	counts = scheduler.TopPercent(counts, cfg.XPercent)

	return writeOutput(os.Stdout, counts, cfg.Extended)
}

// applyOverrides lets any flag the user actually passed on the command
// line win over the loaded configuration file's defaults.
func applyOverrides(cli *cliFlags, cfg *config.Config) {
	cli.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = cli.verbose
		case "l":
			cfg.CutoffLimit = cli.cutoff
		case "p":
			cfg.Parallelism = cli.parallel
		case "tr":
			cfg.Trace = cli.trace
		case "tl":
			cfg.TLLimit = cli.tlLimit
		case "x":
			cfg.Extended = cli.extended
		case "xpc":
			cfg.XPercent = cli.xpercent
		case "i":
			cfg.EchoBadQSOs = cli.echoBad
		}
	})
}

// writeOutput emits SCP (one call per line) or XSCP (call<space>count per
// line) in callorder order (§6).
func writeOutput(w *os.File, counts map[string]int, extended bool) error {
	bw := bufio.NewWriter(w)
	for _, call := range callorder.SortedKeys(counts) {
		var err error
		if extended {
			_, err = fmt.Fprintf(bw, "%s %d\n", call, counts[call])
		} else {
			_, err = fmt.Fprintln(bw, call)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// buildContestList resolves -dir into one or more contest.Params, per
// §6: a plain directory with -start/-hrs, or an "@file" naming either
// single directories (requiring -start/-hrs) or "dir start hours"
// triples, one per non-blank non-"#" line.
func buildContestList(dirArg, startArg string, hours int) ([]contest.Params, error) {
	if !strings.HasPrefix(dirArg, "@") {
		if startArg == "" || hours == 0 {
			return nil, fmt.Errorf("-start and -hrs are required when -dir does not name an @file")
		}
		start, err := parseStart(startArg)
		if err != nil {
			return nil, err
		}
		return []contest.Params{{Dir: dirArg, Start: start, Hours: hours}}, nil
	}

	listFile := dirArg[1:]
	f, err := os.Open(listFile)
	if err != nil {
		return nil, fmt.Errorf("opening contest list %s: %w", listFile, err)
	}
	defer f.Close()

	var defaultStart time.Time
	if startArg != "" {
		defaultStart, err = parseStart(startArg)
		if err != nil {
			return nil, err
		}
	}

	var contests []contest.Params
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 1:
			if startArg == "" || hours == 0 {
				return nil, fmt.Errorf("contest list line %d: %q names a bare directory but -start/-hrs were not given", lineNo, line)
			}
			contests = append(contests, contest.Params{Dir: fields[0], Start: defaultStart, Hours: hours})
		case 3:
			start, err := parseStart(fields[1])
			if err != nil {
				return nil, fmt.Errorf("contest list line %d: %w", lineNo, err)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, fmt.Errorf("contest list line %d: bad hour count %q", lineNo, fields[2])
			}
			contests = append(contests, contest.Params{Dir: fields[0], Start: start, Hours: n})
		default:
			return nil, fmt.Errorf("contest list line %d: expected 1 or 3 fields, got %d", lineNo, len(fields))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(contests) == 0 {
		return nil, fmt.Errorf("contest list %s named zero contests", listFile)
	}
	return contests, nil
}

// parseStart parses the §6 "-start" timestamp: YYYY-MM-DD optionally
// followed by THH, THH:MM, or THH:MM:SS, in UTC.
func parseStart(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02T15",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid -start timestamp %q", s)
}
