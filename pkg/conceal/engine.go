// Package conceal detaches memory mappings of the calling process from the
// files backing them. A matching mapping is replaced in place by anonymous
// memory holding the same bytes with the same protection, so the address
// range keeps working but the mapping table no longer names the file.
//
// Callers must guarantee that no other thread is touching, mapping or
// unmapping the affected ranges while Conceal runs.
package conceal

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Enginex0/nomount-vfs/pkg/procmaps"
)

// InstallRoot is always concealed, whatever patterns the caller passes.
const InstallRoot = "/data/adb/modules"

// Target is one mapping selected for concealment and its outcome.
type Target struct {
	Start  uintptr
	End    uintptr
	Perms  procmaps.Perms
	Path   string
	Hidden bool
	// Err is set for every failed target, and for a hidden target whose
	// protection could not be restored.
	Err error
}

// Report summarizes a Conceal call.
type Report struct {
	Scanned int
	Hidden  int
	Failed  int
	Targets []Target
	// Err is set when the mapping table itself could not be read; no
	// mapping was touched in that case.
	Err error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMapsReader replaces the mapping table source. It is consulted once for
// the initial scan and again before each target to pick up the current
// protection.
func WithMapsReader(read func() ([]procmaps.Entry, error)) Option {
	return func(e *Engine) { e.readMaps = read }
}

// Engine conceals mappings of the calling process.
type Engine struct {
	logger   *slog.Logger
	readMaps func() ([]procmaps.Entry, error)
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   slog.Default(),
		readMaps: procmaps.ReadSelf,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Conceal hides every mapping whose path contains one of patterns or
// InstallRoot. Per-target failures are recorded in the report and never stop
// the remaining targets.
func (e *Engine) Conceal(patterns []string) Report {
	e.logger.Info("conceal: starting", "patterns", len(patterns))

	entries, err := e.readMaps()
	if err != nil {
		e.logger.Error("conceal: read mapping table", "error", err)
		return Report{Err: err}
	}

	report := Report{Scanned: len(entries)}
	for _, entry := range selectTargets(entries, patterns) {
		t := Target{Start: entry.Start, End: entry.End, Perms: entry.Perms, Path: entry.Path}
		remapped, err := e.hide(entry)
		t.Hidden = remapped
		t.Err = err
		switch {
		case !remapped:
			e.logger.Warn("conceal: target left visible",
				"range", formatRange(entry), "path", entry.Path, "error", err)
		case err != nil:
			e.logger.Warn("conceal: hidden with wrong protection",
				"range", formatRange(entry), "path", entry.Path, "perms", entry.Perms, "error", err)
		default:
			e.logger.Debug("conceal: hidden", "range", formatRange(entry), "path", entry.Path)
		}
		if t.Hidden {
			report.Hidden++
		} else {
			report.Failed++
		}
		report.Targets = append(report.Targets, t)
	}

	e.logger.Info("conceal: done",
		"scanned", report.Scanned, "hidden", report.Hidden, "failed", report.Failed)
	return report
}

func selectTargets(entries []procmaps.Entry, patterns []string) []procmaps.Entry {
	var out []procmaps.Entry
	for _, entry := range entries {
		if entry.Path == "" {
			continue
		}
		if strings.Contains(entry.Path, InstallRoot) {
			out = append(out, entry)
			continue
		}
		for _, p := range patterns {
			if p != "" && strings.Contains(entry.Path, p) {
				out = append(out, entry)
				break
			}
		}
	}
	return out
}

func formatRange(e procmaps.Entry) string {
	return fmt.Sprintf("%x-%x", e.Start, e.End)
}
