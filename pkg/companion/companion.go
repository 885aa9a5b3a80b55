// Package companion serves the rule set to clients. The rule set is loaded
// once, on the first connection, and is immutable afterwards.
package companion

import (
	"io"
	"log/slog"
	"sync"

	"github.com/Enginex0/nomount-vfs/pkg/rule"
	"github.com/Enginex0/nomount-vfs/pkg/wire"
)

// LoadFunc produces the operating mode and rule set. It is called at most
// once per Companion.
type LoadFunc func() (rule.Mode, []rule.Rule)

type Option func(*Companion)

func WithLogger(l *slog.Logger) Option {
	return func(c *Companion) { c.logger = l }
}

type Companion struct {
	load   LoadFunc
	logger *slog.Logger

	once  sync.Once
	mode  rule.Mode
	rules []rule.Rule
}

func New(load LoadFunc, opts ...Option) *Companion {
	c := &Companion{load: load, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *Companion) init() {
	c.once.Do(func() {
		mode, rules := c.load()
		c.mode = mode
		if mode == rule.ModeKernelOnly {
			c.logger.Info("companion: initialized", "mode", mode)
			return
		}

		kept := make([]rule.Rule, 0, len(rules))
		for _, r := range rules {
			if err := r.Validate(); err != nil {
				c.logger.Warn("companion: dropping rule", "virtual", r.VirtualPath, "error", err)
				continue
			}
			kept = append(kept, r)
		}
		if len(kept) > wire.MaxRules {
			c.logger.Warn("companion: truncating rule set", "rules", len(kept), "max", wire.MaxRules)
			kept = kept[:wire.MaxRules]
		}
		c.rules = kept
		c.logger.Info("companion: initialized", "mode", mode, "rules", len(kept))
	})
}

// Mode returns the operating mode, loading it if needed.
func (c *Companion) Mode() rule.Mode {
	c.init()
	return c.mode
}

// Rules returns the shared rule set, loading it if needed. Callers must not
// modify it.
func (c *Companion) Rules() []rule.Rule {
	c.init()
	return c.rules
}

// Serve writes the rule set frame to conn and closes it. It is safe to call
// from many goroutines at once.
func (c *Companion) Serve(conn io.WriteCloser) error {
	defer conn.Close()

	c.init()
	if err := wire.WriteRuleSet(conn, c.mode, c.rules); err != nil {
		c.logger.Warn("companion: send rule set", "error", err)
		return err
	}
	c.logger.Debug("companion: rule set sent", "mode", c.mode, "rules", len(c.rules))
	return nil
}
