package rulesource

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/viper"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

// ModeKey is the config.sh variable selecting the operating mode.
const ModeKey = "hiding_mode"

// EnvPrefix lets NOMOUNT_HIDING_MODE override the file.
const EnvPrefix = "NOMOUNT"

// LoadMode reads the operating mode from a config.sh file. Every failure
// still returns ModeHybrid, alongside an error describing why the default was
// used.
func LoadMode(path string) (rule.Mode, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !v.IsSet(ModeKey) {
			return rule.ModeHybrid, errx.With(ErrConfigNotFound, " %s", path)
		}
	case err != nil:
		return rule.ModeHybrid, errx.Wrap(ErrReadConfig, err)
	default:
		vars, err := ParseShellVars(data)
		if err != nil {
			return rule.ModeHybrid, err
		}
		if err := v.MergeConfigMap(vars); err != nil {
			return rule.ModeHybrid, errx.Wrap(ErrReadConfig, err)
		}
	}

	if !v.IsSet(ModeKey) {
		return rule.ModeHybrid, ErrModeNotSet
	}
	raw := strings.TrimSpace(v.GetString(ModeKey))
	n, err := strconv.Atoi(raw)
	// A plain atoi would read garbage as 0 and switch concealment off; an
	// unreadable value keeps the hybrid default instead.
	if err != nil {
		return rule.ModeHybrid, errx.With(ErrInvalidMode, " %q", raw)
	}
	if n == int(rule.ModeKernelOnly) {
		return rule.ModeKernelOnly, nil
	}
	return rule.ModeHybrid, nil
}

// ParseShellVars extracts NAME=value assignments from a shell script.
// Values are unquoted with shell rules; anything after the first word
// (trailing comments, chained commands) is ignored. Lines that are not
// plain assignments, or whose value does not unquote, are skipped. The first
// assignment of a name wins.
func ParseShellVars(data []byte) (map[string]any, error) {
	vars := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		line = strings.TrimPrefix(line, "export ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok || !validShellName(name) {
			continue
		}
		key := strings.ToLower(name)
		if _, seen := vars[key]; seen {
			continue
		}
		words, err := shellquote.Split(value)
		if err != nil {
			slog.Debug("rulesource: skipping config line", "line", lineNo, "name", name, "error", err)
			continue
		}
		if len(words) == 0 {
			vars[key] = ""
			continue
		}
		vars[key] = words[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, errx.Wrap(ErrReadConfig, err)
	}
	return vars, nil
}

func validShellName(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
