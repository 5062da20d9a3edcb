package service

import "strings"

// Slugify lower-cases s and collapses every run of characters other than
// ASCII letters, digits and CJK unified ideographs into a single '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if slugRune(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func slugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r >= '\u4e00' && r <= '\u9fa5':
		return true
	}
	return false
}
