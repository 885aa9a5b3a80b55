// Package procmaps reads a process's memory-mapping table from procfs.
package procmaps

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/Enginex0/nomount-vfs/internal/errx"
)

// SelfPath is the mapping table of the calling process.
const SelfPath = "/proc/self/maps"

// Perms is the four-character permission field, e.g. "r-xp".
type Perms string

func (p Perms) Readable() bool   { return len(p) > 0 && p[0] == 'r' }
func (p Perms) Writable() bool   { return len(p) > 1 && p[1] == 'w' }
func (p Perms) Executable() bool { return len(p) > 2 && p[2] == 'x' }
func (p Perms) Shared() bool     { return len(p) > 3 && p[3] == 's' }

// Prot converts the read/write/execute triad into PROT_* bits.
func (p Perms) Prot() int {
	prot := unix.PROT_NONE
	if p.Readable() {
		prot |= unix.PROT_READ
	}
	if p.Writable() {
		prot |= unix.PROT_WRITE
	}
	if p.Executable() {
		prot |= unix.PROT_EXEC
	}
	return prot
}

// Entry is one line of a maps file.
type Entry struct {
	Start  uintptr
	End    uintptr
	Perms  Perms
	Offset uint64
	Device string
	Inode  uint64
	// Path is empty for anonymous mappings; pseudo paths like "[stack]" and
	// suffixes like " (deleted)" are kept verbatim.
	Path string
}

// Len returns the size of the mapping in bytes.
func (e Entry) Len() uintptr { return e.End - e.Start }

// Contains reports whether [start, start+length) lies inside the entry.
func (e Entry) Contains(start, length uintptr) bool {
	return start >= e.Start && start < e.End && length <= e.End-start
}

// Anonymous reports whether the mapping has no backing path.
func (e Entry) Anonymous() bool { return e.Path == "" }

// ReadSelf parses the calling process's mapping table.
func ReadSelf() ([]Entry, error) {
	return ReadFile(SelfPath)
}

// ReadPID parses the mapping table of another process.
func ReadPID(pid int) ([]Entry, error) {
	return ReadFile("/proc/" + strconv.Itoa(pid) + "/maps")
}

// ReadFile parses a maps file at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errx.Wrap(ErrOpenMaps, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads maps lines from r. Malformed lines are skipped, matching the
// kernel's format loosely so that vendor kernels with extra columns still
// parse.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		if e, ok := ParseLine(scanner.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errx.Wrap(ErrReadMaps, err)
	}
	return entries, nil
}

// ParseLine parses "start-end perms offset dev inode [path]".
func ParseLine(line string) (Entry, bool) {
	var e Entry

	rest := line
	field := func() string {
		rest = strings.TrimLeft(rest, " \t")
		i := strings.IndexAny(rest, " \t")
		if i < 0 {
			f := rest
			rest = ""
			return f
		}
		f := rest[:i]
		rest = rest[i:]
		return f
	}

	addr := field()
	startStr, endStr, ok := strings.Cut(addr, "-")
	if !ok {
		return e, false
	}
	start, err := strconv.ParseUint(startStr, 16, 64)
	if err != nil {
		return e, false
	}
	end, err := strconv.ParseUint(endStr, 16, 64)
	if err != nil || start >= end {
		return e, false
	}
	e.Start, e.End = uintptr(start), uintptr(end)

	perms := field()
	if len(perms) < 3 {
		return e, false
	}
	e.Perms = Perms(perms)

	// offset, dev and inode are informational; tolerate their absence.
	if off, err := strconv.ParseUint(field(), 16, 64); err == nil {
		e.Offset = off
	}
	e.Device = field()
	if ino, err := strconv.ParseUint(field(), 10, 64); err == nil {
		e.Inode = ino
	}
	e.Path = strings.TrimLeft(rest, " \t")
	return e, true
}

// Lookup returns the entry that fully contains [start, start+length).
func Lookup(entries []Entry, start, length uintptr) (Entry, bool) {
	for _, e := range entries {
		if e.Contains(start, length) {
			return e, true
		}
	}
	return Entry{}, false
}

// Match returns the entries whose path contains any of patterns. Empty
// patterns are ignored.
func Match(entries []Entry, patterns []string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Path != "" && containsAny(e.Path, patterns) {
			out = append(out, e)
		}
	}
	return out
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}
