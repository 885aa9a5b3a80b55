// Package rulesource builds the companion's rule set from the toolkit's data
// directory, falling back to scanning installed modules for font overlays.
package rulesource

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

const (
	DefaultDataDir     = "/data/adb/nomount"
	DefaultModulesRoot = "/data/adb/modules"
	DefaultFontsDir    = "/system/fonts"

	ConfigFile = "config.sh"
	RulesFile  = "rules.conf"
)

// Option configures a Source.
type Option func(*Source)

func WithDataDir(dir string) Option     { return func(s *Source) { s.dataDir = dir } }
func WithModulesRoot(dir string) Option { return func(s *Source) { s.modulesRoot = dir } }
func WithFontsDir(dir string) Option    { return func(s *Source) { s.fontsDir = dir } }
func WithLogger(l *slog.Logger) Option  { return func(s *Source) { s.logger = l } }

// Source loads the operating mode and rules from disk.
type Source struct {
	dataDir     string
	modulesRoot string
	fontsDir    string
	logger      *slog.Logger
}

func New(opts ...Option) *Source {
	s := &Source{
		dataDir:     DefaultDataDir,
		modulesRoot: DefaultModulesRoot,
		fontsDir:    DefaultFontsDir,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Source) ConfigPath() string { return filepath.Join(s.dataDir, ConfigFile) }
func (s *Source) RulesPath() string  { return filepath.Join(s.dataDir, RulesFile) }

// Load returns the operating mode and, in hybrid mode, the rule set. It never
// fails: unreadable inputs are logged and yield hybrid mode with whatever
// rules could be found.
func (s *Source) Load() (rule.Mode, []rule.Rule) {
	mode, err := LoadMode(s.ConfigPath())
	switch {
	case errors.Is(err, ErrConfigNotFound):
		s.logger.Warn("rulesource: config not found, defaulting to hybrid", "path", s.ConfigPath())
	case errors.Is(err, ErrModeNotSet):
		s.logger.Warn("rulesource: hiding_mode not set, defaulting to hybrid", "path", s.ConfigPath())
	case err != nil:
		s.logger.Warn("rulesource: bad config, defaulting to hybrid", "path", s.ConfigPath(), "error", err)
	default:
		s.logger.Info("rulesource: mode loaded", "mode", mode)
	}

	if mode == rule.ModeKernelOnly {
		s.logger.Info("rulesource: kernel-only mode, no rules loaded")
		return mode, nil
	}

	rules, skipped, err := LoadRules(s.RulesPath())
	switch {
	case errors.Is(err, ErrRulesNotFound):
		s.logger.Warn("rulesource: rules file not found, scanning modules", "path", s.RulesPath())
	case err != nil:
		s.logger.Warn("rulesource: read rules file", "path", s.RulesPath(), "error", err)
	default:
		s.logger.Info("rulesource: rules loaded from config", "rules", len(rules), "skipped", skipped)
	}
	if len(rules) > 0 {
		return mode, rules
	}

	rules, err = ScanModules(s.modulesRoot, s.fontsDir)
	if err != nil {
		s.logger.Warn("rulesource: scan modules", "root", s.modulesRoot, "error", err)
	}
	s.logger.Info("rulesource: module scan finished", "fonts", len(rules))
	return mode, rules
}
