package view

import (
	"strings"
	"time"

	"github.com/and161185/inkwell/internal/model"
)

// Excerpt lengths for the feed and the profile page.
const (
	FeedExcerptLen    = 150
	ProfileExcerptLen = 100
)

// DateLayout is how dates are shown everywhere.
const DateLayout = "2006-01-02"

// AuthorName picks full name, then username, then "Anonymous".
func AuthorName(a *model.AuthorRef) string {
	if a != nil {
		if a.FullName != nil && strings.TrimSpace(*a.FullName) != "" {
			return *a.FullName
		}
		if a.Username != nil && strings.TrimSpace(*a.Username) != "" {
			return *a.Username
		}
	}
	return "Anonymous"
}

// Excerpt returns the explicit excerpt or the first n runes of content followed by "...".
func Excerpt(p model.Post, n int) string {
	if p.Excerpt != nil && strings.TrimSpace(*p.Excerpt) != "" {
		return *p.Excerpt
	}
	r := []rune(p.Content)
	if len(r) <= n {
		return p.Content + "..."
	}
	return string(r[:n]) + "..."
}

// Date formats t, or returns "" for nil.
func Date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(DateLayout)
}
