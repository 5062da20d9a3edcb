package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/and161185/inkwell/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Screens writes every page to one output.
type Screens struct {
	out   io.Writer
	r     *lipgloss.Renderer
	theme Theme
	width int
	md    *Markdown
}

// NewScreens constructs the screen set. Width is the wrap column.
func NewScreens(out io.Writer, r *lipgloss.Renderer, theme Theme, width int) *Screens {
	if width <= 0 {
		width = 80
	}
	return &Screens{out: out, r: r, theme: theme, width: width, md: NewMarkdown(r, theme, width)}
}

func (s *Screens) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }

func (s *Screens) title(t string) string {
	return s.r.NewStyle().Bold(true).Foreground(s.theme.Title).Render(t)
}

func (s *Screens) faint(t string) string {
	return s.r.NewStyle().Foreground(s.theme.Faint).Render(t)
}

func (s *Screens) rule() string {
	return s.r.NewStyle().Foreground(s.theme.Border).Render(strings.Repeat("─", s.width))
}

func (s *Screens) wrap(t string) string { return ansi.Wrap(t, s.width, wrapBreaks) }

func (s *Screens) heading(t string) {
	s.printf("%s\n%s\n\n", s.title(t), s.rule())
}

// Notice prints an informational line.
func (s *Screens) Notice(msg string) {
	s.printf("%s\n", s.r.NewStyle().Foreground(s.theme.Accent).Render(msg))
}

// Warn prints a non-fatal problem.
func (s *Screens) Warn(msg string) {
	s.printf("%s\n", s.r.NewStyle().Foreground(s.theme.Error).Render(msg))
}

// meta joins the non-empty parts with a separator.
func meta(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " · ")
}

func (s *Screens) postCard(p model.Post, excerptLen int, showStatus bool) {
	s.printf("%s\n", s.title(p.Title))
	cat := ""
	if p.Category != nil {
		cat = "in " + p.Category.Name + " (" + p.Category.Slug + ")"
	}
	date := Date(p.PublishedAt)
	if date == "" {
		date = Date(&p.CreatedAt)
	}
	status := ""
	if showStatus {
		st := s.r.NewStyle().Foreground(s.theme.Accent)
		if p.Status == model.StatusDraft {
			st = st.Foreground(s.theme.Draft)
		}
		status = st.Render(string(p.Status))
	}
	s.printf("%s\n", s.faint(meta("by "+AuthorName(p.Author), date, cat)))
	if status != "" {
		s.printf("%s %s\n", status, s.faint(fmt.Sprintf("%d views", p.ViewCount)))
	}
	s.printf("%s\n", s.wrap(Excerpt(p, excerptLen)))
	s.printf("%s\n\n", s.faint("inkwell post "+p.ID.String()))
}

// Home prints the feed. A nil categories slice means the sidebar could not be loaded.
func (s *Screens) Home(posts []model.Post, categories []model.Category) {
	s.heading("Latest posts")
	if len(posts) == 0 {
		s.printf("%s\n\n", s.faint("No posts yet."))
	}
	for _, p := range posts {
		s.postCard(p, FeedExcerptLen, false)
	}
	if categories == nil {
		return
	}
	s.heading("Categories")
	for _, c := range categories {
		s.printf("  %s %s\n", c.Name, s.faint("("+c.Slug+")"))
	}
	if len(categories) == 0 {
		s.printf("%s\n", s.faint("No categories."))
	}
}

// PostDetail prints one post with rendered markdown and its comments.
func (s *Screens) PostDetail(p *model.Post, comments []model.Comment, viewer *model.SessionUser) {
	s.printf("%s\n", s.r.NewStyle().Bold(true).Underline(true).Foreground(s.theme.Title).Render(p.Title))
	cat := ""
	if p.Category != nil {
		cat = p.Category.Name
	}
	s.printf("%s\n", s.faint(meta("by "+AuthorName(p.Author), Date(p.PublishedAt), cat, fmt.Sprintf("%d views", p.ViewCount))))
	if p.Status == model.StatusDraft {
		s.printf("%s\n", s.r.NewStyle().Foreground(s.theme.Draft).Render("draft"))
	}
	s.printf("%s\n\n", s.rule())
	if body := s.md.Render(p.Content); body != "" {
		s.printf("%s\n\n", body)
	}
	s.printf("%s\n", s.rule())
	s.heading(fmt.Sprintf("Comments (%d)", len(comments)))
	if len(comments) == 0 {
		s.printf("%s\n", s.faint("No comments yet."))
	}
	for _, c := range comments {
		who := AuthorName(c.Author)
		if viewer != nil && c.AuthorID == viewer.ID {
			who += " (you, id " + c.ID.String() + ")"
		}
		s.printf("%s %s\n", s.r.NewStyle().Bold(true).Render(who), s.faint(Date(&c.CreatedAt)))
		s.printf("%s\n\n", s.wrap(c.Content))
	}
	switch {
	case viewer == nil:
		s.printf("\n%s\n", s.faint("Log in to comment: inkwell login"))
	case viewer.ID == p.AuthorID:
		s.printf("\n%s\n", s.faint("Edit: inkwell edit "+p.ID.String()))
	}
}

// Categories prints every category with its post count.
func (s *Screens) Categories(categories []model.Category) {
	s.heading("Categories")
	if len(categories) == 0 {
		s.printf("%s\n", s.faint("No categories."))
		return
	}
	for _, c := range categories {
		s.printf("%s %s\n", s.title(c.Name), s.faint(fmt.Sprintf("%d posts", c.PostCount)))
		if c.Description != nil && *c.Description != "" {
			s.printf("%s\n", s.wrap(*c.Description))
		}
		s.printf("%s\n\n", s.faint("inkwell category "+c.Slug))
	}
}

// CategoryDetail prints a category header and its posts.
func (s *Screens) CategoryDetail(c *model.Category, posts []model.Post) {
	s.heading(c.Name)
	if c.Description != nil && *c.Description != "" {
		s.printf("%s\n\n", s.wrap(*c.Description))
	}
	if len(posts) == 0 {
		s.printf("%s\n", s.faint("No posts in this category yet."))
		return
	}
	for _, p := range posts {
		s.postCard(p, FeedExcerptLen, false)
	}
}

// ProfileTab filters the profile post list.
type ProfileTab string

// Profile tabs.
const (
	TabPublished ProfileTab = "published"
	TabDraft     ProfileTab = "draft"
	TabAll       ProfileTab = "all"
)

// Valid reports whether t is a known tab.
func (t ProfileTab) Valid() bool {
	return t == TabPublished || t == TabDraft || t == TabAll
}

// FilterPosts keeps the posts shown under tab.
func FilterPosts(posts []model.Post, tab ProfileTab) []model.Post {
	if tab == TabAll {
		return posts
	}
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if string(p.Status) == string(tab) {
			out = append(out, p)
		}
	}
	return out
}

// Profile prints the user's profile and their posts under tab.
func (s *Screens) Profile(u *model.SessionUser, p *model.Profile, posts []model.Post, tab ProfileTab) {
	name := u.Email
	if p != nil {
		name = AuthorName(&model.AuthorRef{FullName: p.FullName, Username: p.Username})
		if name == "Anonymous" {
			name = u.Email
		}
	}
	s.heading(name)
	s.printf("%s\n", s.faint(meta(u.Email, usernameOf(p))))
	if p != nil {
		if p.Bio != nil && *p.Bio != "" {
			s.printf("%s\n", s.wrap(*p.Bio))
		}
		if p.AvatarURL != nil && *p.AvatarURL != "" {
			s.printf("%s\n", s.faint("avatar: "+*p.AvatarURL))
		}
		s.printf("%s\n", s.faint("joined "+Date(&p.CreatedAt)))
	}

	var pub, drafts int
	for _, x := range posts {
		if x.Status == model.StatusPublished {
			pub++
		} else {
			drafts++
		}
	}
	s.printf("\n%s\n\n", s.faint(fmt.Sprintf("%d published · %d drafts · showing %s", pub, drafts, tab)))

	shown := FilterPosts(posts, tab)
	if len(shown) == 0 {
		s.printf("%s\n", s.faint("Nothing here yet. Start writing: inkwell create"))
		return
	}
	for _, x := range shown {
		s.postCard(x, ProfileExcerptLen, true)
	}
}

func usernameOf(p *model.Profile) string {
	if p == nil || p.Username == nil || *p.Username == "" {
		return ""
	}
	return "@" + *p.Username
}
