// Package wire implements the one-shot rule distribution frame sent from the
// companion to a client:
//
//	mode int32
//	count int32
//	count × { vlen int32, vpath [vlen]byte, rlen int32, rpath [rlen]byte,
//	          class int32, hide int32 }
//
// All integers are 32-bit little-endian. In kernel-only mode count is always
// zero and no rules follow.
package wire

import (
	"encoding/binary"
	"io"
	"log/slog"
	"slices"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

// MaxRules is the largest rule count a client accepts.
const MaxRules = 10000

// WriteRuleSet encodes mode and rules and writes them to w in a single call.
// Rules are ignored in kernel-only mode. Nothing is written if any rule
// violates the path bounds.
func WriteRuleSet(w io.Writer, mode rule.Mode, rules []rule.Rule) error {
	buf, err := AppendRuleSet(nil, mode, rules)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return errx.Wrap(ErrWriteFrame, err)
	}
	return nil
}

// AppendRuleSet appends the encoded frame to buf.
func AppendRuleSet(buf []byte, mode rule.Mode, rules []rule.Rule) ([]byte, error) {
	if mode == rule.ModeKernelOnly {
		buf = appendInt32(buf, int32(rule.ModeKernelOnly))
		return appendInt32(buf, 0), nil
	}
	if len(rules) > MaxRules {
		return nil, errx.With(ErrRuleCount, " %d", len(rules))
	}

	size := 8
	for i, r := range rules {
		if !validLen(len(r.VirtualPath)) || !validLen(len(r.RealPath)) {
			return nil, errx.With(ErrPathLength, " rule %d: vpath=%d rpath=%d", i, len(r.VirtualPath), len(r.RealPath))
		}
		size += 16 + len(r.VirtualPath) + len(r.RealPath)
	}

	buf = slices.Grow(buf, size)
	buf = appendInt32(buf, int32(mode))
	buf = appendInt32(buf, int32(len(rules)))
	for _, r := range rules {
		buf = appendInt32(buf, int32(len(r.VirtualPath)))
		buf = append(buf, r.VirtualPath...)
		buf = appendInt32(buf, int32(len(r.RealPath)))
		buf = append(buf, r.RealPath...)
		buf = appendInt32(buf, int32(r.Classification))
		hide := int32(0)
		if r.HideFromMaps {
			hide = 1
		}
		buf = appendInt32(buf, hide)
	}
	return buf, nil
}

// ReadRuleSet decodes one frame from r. Any non-zero mode is reported as
// hybrid. On error the returned rule set is always nil, and the mode is
// whatever was read before the failure (hybrid if nothing was read).
func ReadRuleSet(r io.Reader) (rule.Mode, []rule.Rule, error) {
	dec := decoder{r: r}

	rawMode, err := dec.readInt32()
	if err != nil {
		return rule.ModeHybrid, nil, errx.Wrap(ErrReadMode, err)
	}
	mode := rule.ModeHybrid
	if rawMode == int32(rule.ModeKernelOnly) {
		mode = rule.ModeKernelOnly
	}

	count, err := dec.readInt32()
	if err != nil {
		return mode, nil, errx.Wrap(ErrReadCount, err)
	}
	if mode == rule.ModeKernelOnly {
		return mode, nil, nil
	}
	if count < 0 || count > MaxRules {
		return mode, nil, errx.With(ErrRuleCount, " %d", count)
	}

	rules := make([]rule.Rule, 0, count)
	for i := int32(0); i < count; i++ {
		vpath, err := dec.readPath()
		if err != nil {
			return mode, nil, errx.With(err, " (rule %d virtual path)", i)
		}
		rpath, err := dec.readPath()
		if err != nil {
			return mode, nil, errx.With(err, " (rule %d real path)", i)
		}
		class, err := dec.readInt32()
		if err != nil {
			return mode, nil, errx.With(ErrReadRule, " %d classification: %w", i, err)
		}
		hide, err := dec.readInt32()
		if err != nil {
			return mode, nil, errx.With(ErrReadRule, " %d hide flag: %w", i, err)
		}
		rules = append(rules, rule.Rule{
			VirtualPath:    vpath,
			RealPath:       rpath,
			Classification: rule.Coerce(class),
			HideFromMaps:   hide != 0,
		})
	}
	return mode, rules, nil
}

// Fetch reads one frame and never fails: a decode error is logged and the
// rule set dropped, keeping whatever mode was read.
func Fetch(r io.Reader, logger *slog.Logger) (rule.Mode, []rule.Rule) {
	if logger == nil {
		logger = slog.Default()
	}
	mode, rules, err := ReadRuleSet(r)
	if err != nil {
		logger.Warn("wire: rule set discarded", "mode", mode, "error", err)
		return mode, nil
	}
	return mode, rules
}

type decoder struct {
	r       io.Reader
	scratch [4]byte
}

func (d *decoder) readInt32() (int32, error) {
	if _, err := io.ReadFull(d.r, d.scratch[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(d.scratch[:])), nil
}

func (d *decoder) readPath() (string, error) {
	n, err := d.readInt32()
	if err != nil {
		return "", errx.Wrap(ErrReadRule, err)
	}
	if !validLen(int(n)) {
		return "", errx.With(ErrPathLength, " %d", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return "", errx.Wrap(ErrReadRule, err)
	}
	return string(b), nil
}

func validLen(n int) bool {
	return n > 0 && n < rule.MaxPathLen
}

func appendInt32(buf []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(buf, uint32(v))
}
