package rulesource

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Enginex0/nomount-vfs/internal/errx"
	"github.com/Enginex0/nomount-vfs/pkg/rule"
)

// DisableMarker in a module directory excludes the module from scanning.
const DisableMarker = "disable"

// ScanModules emits a Font rule for every file in <module>/system/fonts of
// each enabled module under root whose counterpart exists in fontsDir.
func ScanModules(root, fontsDir string) ([]rule.Rule, error) {
	modules, err := os.ReadDir(root)
	if err != nil {
		return nil, errx.Wrap(ErrScanModules, err)
	}

	var rules []rule.Rule
	for _, m := range modules {
		if !m.IsDir() || strings.HasPrefix(m.Name(), ".") {
			continue
		}
		moduleDir := filepath.Join(root, m.Name())
		if exists(filepath.Join(moduleDir, DisableMarker)) {
			continue
		}

		overlay := filepath.Join(moduleDir, "system", "fonts")
		fonts, err := os.ReadDir(overlay)
		if err != nil {
			continue
		}
		for _, f := range fonts {
			if !f.Type().IsRegular() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			vpath := filepath.Join(fontsDir, f.Name())
			if !exists(vpath) {
				continue
			}
			rules = append(rules, rule.Rule{
				VirtualPath:    vpath,
				RealPath:       filepath.Join(overlay, f.Name()),
				Classification: rule.Font,
				HideFromMaps:   true,
			})
		}
	}
	return rules, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
