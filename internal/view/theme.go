// Package view renders the terminal screens: post feeds, post detail with
// markdown, categories and the profile page.
package view

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the colours used by every screen.
type Theme struct {
	Title  lipgloss.Color
	Text   lipgloss.Color
	Faint  lipgloss.Color
	Accent lipgloss.Color
	Border lipgloss.Color
	Draft  lipgloss.Color
	Error  lipgloss.Color
}

// DefaultTheme is tuned for dark 256-colour terminals.
var DefaultTheme = Theme{
	Title:  lipgloss.Color("75"),
	Text:   lipgloss.Color("252"),
	Faint:  lipgloss.Color("243"),
	Accent: lipgloss.Color("114"),
	Border: lipgloss.Color("238"),
	Draft:  lipgloss.Color("214"),
	Error:  lipgloss.Color("203"),
}

// NewRenderer binds a lipgloss renderer to w. A zero profile means auto-detect from w.
func NewRenderer(w io.Writer, profile termenv.Profile, forced bool) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if forced {
		r.SetColorProfile(profile)
	}
	return r
}
