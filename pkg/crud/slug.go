package crud

import "strings"

// Slugify derives a URL-safe slug: lower-case, any run of non-alphanumeric
// characters collapsed to a single hyphen, no leading or trailing hyphens.
// It is deterministic and idempotent over its own output.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
