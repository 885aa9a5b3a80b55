// Package module drives one target process through specialization: fetch
// the rule set from the companion, preload overlaid fonts, conceal the
// process's mappings, then ask the host to unload this code.
//
// Everything runs synchronously on the calling goroutine.
package module

import (
	"io"

	"github.com/Enginex0/nomount-vfs/pkg/conceal"
)

// Option is a request from the module to its host.
type Option int

const (
	// OptionDlcloseModuleLibrary asks the host to unload the module's code
	// once the current hook returns.
	OptionDlcloseModuleLibrary Option = iota + 1
)

func (o Option) String() string {
	switch o {
	case OptionDlcloseModuleLibrary:
		return "dlclose-module-library"
	default:
		return "option(unknown)"
	}
}

// Host is the injection framework hosting the module.
type Host interface {
	ConnectCompanion() (io.ReadCloser, error)
	SetOption(Option)
}

type AppSpecializeArgs struct {
	UID        int
	GID        int
	NiceName   string
	AppDataDir string
}

type ServerSpecializeArgs struct {
	UID int
	GID int
}

// Module is the set of hooks a host invokes, in order, on one process.
type Module interface {
	OnLoad(host Host)
	PreAppSpecialize(args *AppSpecializeArgs)
	PreServerSpecialize(args *ServerSpecializeArgs)
}

// FontCache warms the platform's font cache for one path.
type FontCache interface {
	WarmUp(path string) error
}

// FontCacheLookup locates the font cache. It is called at most once per
// process.
type FontCacheLookup func() (FontCache, error)

// Concealer scrubs mappings whose path matches any pattern.
type Concealer interface {
	Conceal(patterns []string) conceal.Report
}
