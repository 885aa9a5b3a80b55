package rule

import (
	"strconv"
	"strings"

	"github.com/Enginex0/nomount-vfs/internal/errx"
)

// MaxPathLen is the exclusive upper bound on a rule path length in bytes.
const MaxPathLen = 4096

// Mode selects where concealment happens for the lifetime of a companion.
type Mode int32

const (
	// ModeKernelOnly leaves all hiding to the driver; clients do nothing.
	ModeKernelOnly Mode = 0
	// ModeHybrid runs rule distribution and map concealment in every app.
	ModeHybrid Mode = 1
)

func (m Mode) String() string {
	switch m {
	case ModeKernelOnly:
		return "kernel-only"
	case ModeHybrid:
		return "hybrid"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Classification drives type-specific handling of a rule.
type Classification int32

const (
	Unknown Classification = iota
	Library
	Font
	Media
	App
	Framework
	Config
)

var classificationNames = [...]string{
	Unknown:   "unknown",
	Library:   "library",
	Font:      "font",
	Media:     "media",
	App:       "app",
	Framework: "framework",
	Config:    "config",
}

func (c Classification) String() string {
	if !c.Valid() {
		return "classification(" + strconv.Itoa(int(c)) + ")"
	}
	return classificationNames[c]
}

// Valid reports whether c is one of the known classifications.
func (c Classification) Valid() bool {
	return c >= Unknown && c <= Config
}

// Coerce maps any out-of-range value to Unknown.
func Coerce(v int32) Classification {
	c := Classification(v)
	if !c.Valid() {
		return Unknown
	}
	return c
}

// ParseClassification accepts a classification name or its numeric value.
func ParseClassification(s string) (Classification, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range classificationNames {
		if s == name {
			return Classification(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Classification(n).Valid() {
		return Classification(n), nil
	}
	return Unknown, errx.With(ErrUnknownClassification, " %q", s)
}

// Rule maps a virtual path to the real path backing it.
type Rule struct {
	VirtualPath    string
	RealPath       string
	Classification Classification
	HideFromMaps   bool
}

// Validate checks the path invariants shared by the config parser and the
// wire protocol.
func (r Rule) Validate() error {
	if err := validatePath(r.VirtualPath); err != nil {
		return errx.With(err, " (virtual path)")
	}
	if err := validatePath(r.RealPath); err != nil {
		return errx.With(err, " (real path)")
	}
	return nil
}

func validatePath(p string) error {
	if p == "" {
		return ErrEmptyPath
	}
	if len(p) >= MaxPathLen {
		return errx.With(ErrPathTooLong, " %d bytes", len(p))
	}
	if strings.ContainsAny(p, "|\n\x00") {
		return errx.With(ErrPathDelimiter, " %q", p)
	}
	return nil
}
