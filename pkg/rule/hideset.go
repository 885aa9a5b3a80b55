package rule

// DefaultHidePatterns are always appended to a hide-set: the toolkit's own
// install locations and co-installed injection frameworks.
var DefaultHidePatterns = []string{
	"/data/adb/modules",
	"/data/adb/ksu",
	"magisk",
	"zygisk",
}

// HideSet returns the virtual and real path of every rule with HideFromMaps
// set, followed by DefaultHidePatterns. Empty and duplicate entries are
// dropped; order is otherwise preserved.
func HideSet(rules []Rule) []string {
	seen := make(map[string]bool, 2*len(rules)+len(DefaultHidePatterns))
	out := make([]string, 0, 2*len(rules)+len(DefaultHidePatterns))
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}
	for _, r := range rules {
		if !r.HideFromMaps {
			continue
		}
		add(r.VirtualPath)
		add(r.RealPath)
	}
	for _, p := range DefaultHidePatterns {
		add(p)
	}
	return out
}

// Fonts returns the rules classified as Font, in order.
func Fonts(rules []Rule) []Rule {
	var out []Rule
	for _, r := range rules {
		if r.Classification == Font {
			out = append(out, r)
		}
	}
	return out
}
