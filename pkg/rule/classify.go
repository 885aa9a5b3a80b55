package rule

import "strings"

// classifiers are checked in order; the first matching group wins.
var classifiers = []struct {
	class   Classification
	needles []string
}{
	{Font, []string{"/fonts/", ".ttf", ".otf"}},
	{Library, []string{".so"}},
	{Framework, []string{"/framework/", ".jar", ".dex"}},
	{Media, []string{"/media/", ".ogg", ".mp3"}},
	{App, []string{".apk"}},
	{Config, []string{".xml", ".conf", ".prop"}},
}

// Classify derives a classification from a virtual path. Matching is plain
// substring containment, so "/system/lib/libfoo.so.1" is a Library and
// "/system/fonts/README" is a Font. Unmatched paths are Unknown.
func Classify(path string) Classification {
	for _, c := range classifiers {
		for _, needle := range c.needles {
			if strings.Contains(path, needle) {
				return c.class
			}
		}
	}
	return Unknown
}
