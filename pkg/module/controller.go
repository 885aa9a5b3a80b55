package module

import (
	"log/slog"

	"github.com/Enginex0/nomount-vfs/pkg/conceal"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
	"github.com/Enginex0/nomount-vfs/pkg/wire"
)

// Result summarizes what the controller did to its process.
type Result struct {
	State          State
	Connected      bool
	Mode           rule.Mode
	Rules          int
	FontsPreloaded int
	FontsSkipped   int
	HideSet        []string
	Concealment    *conceal.Report
}

type ControllerOption func(*Controller)

func WithFontCacheLookup(lookup FontCacheLookup) ControllerOption {
	return func(c *Controller) { c.fontLookup = lookup }
}

func WithConcealer(concealer Concealer) ControllerOption {
	return func(c *Controller) { c.concealer = concealer }
}

func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// Controller is the Module implementation. One Controller serves exactly one
// process; it is not safe for concurrent use.
type Controller struct {
	host       Host
	state      State
	fontLookup FontCacheLookup
	concealer  Concealer
	logger     *slog.Logger

	fontResolved bool
	fontCache    FontCache

	result Result
}

var _ Module = (*Controller)(nil)

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{state: StateLoaded, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.concealer == nil {
		c.concealer = conceal.New(conceal.WithLogger(c.logger))
	}
	return c
}

func (c *Controller) OnLoad(host Host) {
	c.host = host
}

func (c *Controller) State() State { return c.state }

// Result returns a snapshot of the work done so far.
func (c *Controller) Result() Result {
	r := c.result
	r.State = c.state
	return r
}

func (c *Controller) PreAppSpecialize(args *AppSpecializeArgs) {
	if err := c.transition(StateSpecializing); err != nil {
		return
	}
	defer c.finish()

	name := ""
	if args != nil {
		name = args.NiceName
	}
	log := c.logger.With("process", name)

	if c.host == nil {
		log.Warn("module: no host, skipping", "error", ErrNoHost)
		return
	}
	conn, err := c.host.ConnectCompanion()
	if err != nil {
		log.Warn("module: companion unavailable", "error", err)
		return
	}
	mode, rules := wire.Fetch(conn, log)
	_ = conn.Close()

	c.result.Connected = true
	c.result.Mode = mode
	c.result.Rules = len(rules)
	if mode == rule.ModeKernelOnly {
		log.Info("module: kernel-only mode")
		return
	}

	for _, r := range rule.Fonts(rules) {
		c.preloadFont(log, r.VirtualPath)
	}
	if c.result.FontsPreloaded > 0 || c.result.FontsSkipped > 0 {
		log.Info("module: fonts preloaded", "preloaded", c.result.FontsPreloaded, "skipped", c.result.FontsSkipped)
	}

	c.result.HideSet = rule.HideSet(rules)
	report := c.concealer.Conceal(c.result.HideSet)
	c.result.Concealment = &report
}

func (c *Controller) PreServerSpecialize(*ServerSpecializeArgs) {
	if err := c.transition(StateDone); err != nil {
		return
	}
	c.unload()
}

func (c *Controller) preloadFont(log *slog.Logger, path string) {
	if !c.fontResolved {
		c.fontResolved = true
		if c.fontLookup == nil {
			log.Debug("module: no font cache configured")
		} else if fc, err := c.fontLookup(); err != nil {
			log.Warn("module: font cache lookup", "error", err)
		} else {
			c.fontCache = fc
		}
	}
	if c.fontCache == nil {
		c.result.FontsSkipped++
		return
	}
	if err := c.fontCache.WarmUp(path); err != nil {
		log.Warn("module: font preload", "path", path, "error", err)
		c.result.FontsSkipped++
		return
	}
	c.result.FontsPreloaded++
}

func (c *Controller) finish() {
	if err := c.transition(StateDone); err != nil {
		return
	}
	c.unload()
}

func (c *Controller) unload() {
	if c.host != nil {
		c.host.SetOption(OptionDlcloseModuleLibrary)
	}
}

func (c *Controller) transition(to State) error {
	if err := validateTransition(c.state, to); err != nil {
		c.logger.Warn("module: ignoring hook", "error", err)
		return err
	}
	c.state = to
	return nil
}
