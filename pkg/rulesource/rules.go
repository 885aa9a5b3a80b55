package rulesource

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

// FlagHideFromMaps in the flags column marks a rule for map concealment.
const FlagHideFromMaps = "MAPS"

// LoadRules parses a rules.conf file. skipped counts lines that looked like
// rules but were rejected.
func LoadRules(path string) (rules []rule.Rule, skipped int, err error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, errx.With(ErrRulesNotFound, " %s", path)
	}
	if err != nil {
		return nil, 0, errx.Wrap(ErrReadRules, err)
	}
	defer f.Close()
	return ParseRules(f)
}

// ParseRules reads TYPE|virtual|real|flags|apps lines. Blank lines and lines
// starting with '#' are ignored; TYPE must be FILE or DIR. The apps column is
// accepted and ignored.
func ParseRules(r io.Reader) (rules []rule.Rule, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rl, ok := parseRuleLine(line)
		if !ok {
			slog.Debug("rulesource: skipping rule line", "line", lineNo)
			skipped++
			continue
		}
		rules = append(rules, rl)
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, errx.Wrap(ErrReadRules, err)
	}
	return rules, skipped, nil
}

func parseRuleLine(line string) (rule.Rule, bool) {
	fields := strings.SplitN(line, "|", 5)
	if len(fields) < 2 {
		return rule.Rule{}, false
	}
	switch fields[0] {
	case "FILE", "DIR":
	default:
		return rule.Rule{}, false
	}

	r := rule.Rule{VirtualPath: fields[1]}
	if len(fields) > 2 {
		r.RealPath = fields[2]
	}
	if len(fields) > 3 {
		r.HideFromMaps = strings.Contains(fields[3], FlagHideFromMaps)
	}
	r.Classification = rule.Classify(r.VirtualPath)

	if r.Validate() != nil {
		return rule.Rule{}, false
	}
	return r, true
}
