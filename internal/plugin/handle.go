package plugin

import (
	"regexp"
	"strings"
)

var (
	handlePattern = regexp.MustCompile(`^[a-zA-Z][\w-]*$`)
	dashRun       = regexp.MustCompile(`-{2,}`)
)

// ValidHandle reports whether handle is an acceptable plugin handle.
func ValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

// NormalizeHandle converts a camel-case or snake-case handle to kebab-case:
// "MyCoolPlugin" becomes "my-cool-plugin". A run of capitals is kept
// together, so "ABCPlugin" becomes "abcplugin".
func NormalizeHandle(handle string) string {
	var b strings.Builder
	prevUpper := false
	for _, r := range handle {
		upper := r >= 'A' && r <= 'Z'
		if upper && !prevUpper {
			b.WriteByte('-')
		}
		b.WriteRune(r)
		prevUpper = upper
	}

	s := strings.ReplaceAll(b.String(), "_", "-")
	s = strings.ToLower(strings.Trim(s, "-"))
	return dashRun.ReplaceAllString(s, "-")
}
