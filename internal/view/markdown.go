package view

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const wrapBreaks = " ,.;-+|"

// Markdown renders markdown source as styled, word-wrapped terminal text.
type Markdown struct {
	md    goldmark.Markdown
	r     *lipgloss.Renderer
	theme Theme
	width int
}

// NewMarkdown constructs a renderer wrapping at width columns.
func NewMarkdown(r *lipgloss.Renderer, theme Theme, width int) *Markdown {
	return &Markdown{
		md:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
		r:     r,
		theme: theme,
		width: width,
	}
}

// Render converts src. Empty input renders as an empty string.
func (m *Markdown) Render(src string) string {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	source := []byte(src)
	doc := m.md.Parser().Parse(text.NewReader(source))
	w := &mdWalker{m: m, src: source}
	_ = ast.Walk(doc, w.walk)
	return strings.TrimRight(w.out.String(), "\n")
}

type mdList struct {
	ordered bool
	n       int
	tight   bool
}

type mdWalker struct {
	m   *Markdown
	src []byte

	out      strings.Builder
	inline   strings.Builder
	newlines int

	prefix      []string
	prefixWidth int
	bullet      string

	bold, italic, strike int
	lists                []mdList
}

func (w *mdWalker) style() lipgloss.Style { return w.m.r.NewStyle() }

func (w *mdWalker) width() int {
	if n := w.m.width - w.prefixWidth; n > 10 {
		return n
	}
	return 10
}

func (w *mdWalker) push(p string) {
	w.prefix = append(w.prefix, p)
	w.prefixWidth += lipgloss.Width(p)
}

func (w *mdWalker) pop() {
	if len(w.prefix) == 0 {
		return
	}
	last := w.prefix[len(w.prefix)-1]
	w.prefix = w.prefix[:len(w.prefix)-1]
	w.prefixWidth -= lipgloss.Width(last)
}

func (w *mdWalker) linePrefix() string { return strings.Join(w.prefix, "") }

func (w *mdWalker) firstPrefix() string {
	if w.bullet != "" {
		b := w.bullet
		w.bullet = ""
		return b
	}
	return w.linePrefix()
}

func (w *mdWalker) write(s string) {
	if s == "" {
		return
	}
	w.out.WriteString(s)
	trimmed := strings.TrimRight(s, "\n")
	n := len(s) - len(trimmed)
	if trimmed == "" {
		w.newlines += n
	} else {
		w.newlines = n
	}
}

func (w *mdWalker) newline() {
	if w.newlines < 1 {
		w.write("\n")
	}
}

func (w *mdWalker) blank() {
	if w.out.Len() == 0 {
		return
	}
	for w.newlines < 2 {
		w.write("\n")
	}
}

func (w *mdWalker) tight() bool {
	return len(w.lists) > 0 && w.lists[len(w.lists)-1].tight
}

// block prefixes every line of s and writes it.
func (w *mdWalker) block(s string) {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if i == 0 {
			w.write(w.firstPrefix() + l)
		} else {
			w.write(w.linePrefix() + l)
		}
		w.newline()
	}
}

func (w *mdWalker) flush() {
	s := w.inline.String()
	w.inline.Reset()
	if s == "" {
		return
	}
	w.block(ansi.Wrap(s, w.width(), wrapBreaks))
	if !w.tight() {
		w.blank()
	}
}

func (w *mdWalker) text(s string) string {
	st := w.style().Foreground(w.m.theme.Text)
	if w.bold > 0 {
		st = st.Bold(true)
	}
	if w.italic > 0 {
		st = st.Italic(true)
	}
	if w.strike > 0 {
		st = st.Strikethrough(true)
	}
	return st.Render(s)
}

func (w *mdWalker) lines(n ast.Node) string {
	var b strings.Builder
	ls := n.Lines()
	for i := 0; i < ls.Len(); i++ {
		seg := ls.At(i)
		b.Write(seg.Value(w.src))
	}
	return b.String()
}

// highlight runs chroma when the output supports colour.
func (w *mdWalker) highlight(code, lang string) string {
	if lang != "" && w.m.r.ColorProfile() != termenv.Ascii {
		var b strings.Builder
		if err := quick.Highlight(&b, code, lang, "terminal256", "monokai"); err == nil {
			return b.String()
		}
	}
	faint := w.style().Foreground(w.m.theme.Faint)
	ls := strings.Split(code, "\n")
	for i := range ls {
		ls[i] = faint.Render(ls[i])
	}
	return strings.Join(ls, "\n")
}

func (w *mdWalker) code(s string) {
	w.blank()
	w.block(strings.TrimRight(s, "\n"))
	w.blank()
}

func (w *mdWalker) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			w.inline.Reset()
		} else {
			w.flush()
		}

	case ast.KindHeading:
		if entering {
			w.inline.Reset()
			return ast.WalkContinue, nil
		}
		h := n.(*ast.Heading)
		s := ansi.Strip(w.inline.String())
		w.inline.Reset()
		st := w.style().Bold(true).Foreground(w.m.theme.Text)
		if h.Level <= 2 {
			st = st.Foreground(w.m.theme.Title)
			if h.Level == 1 {
				st = st.Underline(true)
			}
		}
		w.blank()
		w.block(ansi.Wrap(st.Render(s), w.width(), wrapBreaks))
		w.blank()

	case ast.KindFencedCodeBlock:
		if entering {
			fc := n.(*ast.FencedCodeBlock)
			w.code(w.highlight(w.lines(fc), string(fc.Language(w.src))))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindCodeBlock:
		if entering {
			w.code(w.highlight(w.lines(n), ""))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindBlockquote:
		if entering {
			w.push(w.style().Foreground(w.m.theme.Border).Render("│") + " ")
		} else {
			w.pop()
			w.blank()
		}

	case ast.KindList:
		if entering {
			l := n.(*ast.List)
			w.lists = append(w.lists, mdList{ordered: l.IsOrdered(), n: l.Start, tight: l.IsTight})
		} else {
			w.lists = w.lists[:len(w.lists)-1]
			if !w.tight() {
				w.blank()
			}
		}

	case ast.KindListItem:
		if entering {
			top := &w.lists[len(w.lists)-1]
			b := "• "
			if top.ordered {
				b = fmt.Sprintf("%d. ", top.n)
				top.n++
			}
			w.bullet = w.linePrefix() + b
			w.push(strings.Repeat(" ", lipgloss.Width(b)))
		} else {
			w.pop()
			if w.tight() {
				w.newline()
			} else {
				w.blank()
			}
		}

	case ast.KindThematicBreak:
		if entering {
			w.blank()
			w.block(w.style().Foreground(w.m.theme.Border).Render(strings.Repeat("─", w.width())))
			w.blank()
		}

	case ast.KindHTMLBlock:
		if entering {
			if s := strings.TrimSpace(stripTags(w.lines(n))); s != "" {
				w.block(w.style().Foreground(w.m.theme.Faint).Render(s))
				w.blank()
			}
		}
		return ast.WalkSkipChildren, nil

	case ast.KindText:
		if entering {
			t := n.(*ast.Text)
			w.inline.WriteString(w.text(string(t.Segment.Value(w.src))))
			switch {
			case t.HardLineBreak():
				w.inline.WriteString("\n")
			case t.SoftLineBreak():
				w.inline.WriteString(" ")
			}
		}

	case ast.KindString:
		if entering {
			w.inline.WriteString(w.text(string(n.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		d := -1
		if entering {
			d = 1
		}
		if n.(*ast.Emphasis).Level >= 2 {
			w.bold += d
		} else {
			w.italic += d
		}

	case extast.KindStrikethrough:
		if entering {
			w.strike++
		} else {
			w.strike--
		}

	case ast.KindCodeSpan:
		if entering {
			var b strings.Builder
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				switch t := c.(type) {
				case *ast.Text:
					b.Write(t.Segment.Value(w.src))
				case *ast.String:
					b.Write(t.Value)
				}
			}
			w.inline.WriteString(w.style().Foreground(w.m.theme.Accent).Render(b.String()))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindLink:
		if entering {
			l := n.(*ast.Link)
			w.inline.WriteString(w.children(n))
			if dst := string(l.Destination); dst != "" {
				w.inline.WriteString(" " + w.style().Foreground(w.m.theme.Faint).Render("("+dst+")"))
			}
		}
		return ast.WalkSkipChildren, nil

	case ast.KindAutoLink:
		if entering {
			url := string(n.(*ast.AutoLink).URL(w.src))
			w.inline.WriteString(w.style().Foreground(w.m.theme.Faint).Render(url))
		}
		return ast.WalkSkipChildren, nil

	case ast.KindImage:
		if entering {
			img := n.(*ast.Image)
			faint := w.style().Foreground(w.m.theme.Faint)
			w.inline.WriteString(faint.Render("[image: " + ansi.Strip(w.children(n)) + "]"))
			if dst := string(img.Destination); dst != "" {
				w.inline.WriteString(" " + faint.Render("("+dst+")"))
			}
		}
		return ast.WalkSkipChildren, nil

	case ast.KindRawHTML:
		if entering {
			raw := n.(*ast.RawHTML)
			var b strings.Builder
			for i := 0; i < raw.Segments.Len(); i++ {
				seg := raw.Segments.At(i)
				b.Write(seg.Value(w.src))
			}
			if s := stripTags(b.String()); s != "" {
				w.inline.WriteString(w.style().Foreground(w.m.theme.Faint).Render(s))
			}
		}
		return ast.WalkSkipChildren, nil

	case extast.KindTaskCheckBox:
		if entering {
			if n.(*extast.TaskCheckBox).IsChecked {
				w.inline.WriteString(w.style().Foreground(w.m.theme.Accent).Render("[x]") + " ")
			} else {
				w.inline.WriteString(w.text("[ ] "))
			}
		}

	case extast.KindTable:
		if entering {
			w.table(n)
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

// children renders the inline content of n without disturbing the current paragraph.
func (w *mdWalker) children(n ast.Node) string {
	saved := w.inline.String()
	w.inline.Reset()
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		_ = ast.Walk(c, w.walk)
	}
	out := w.inline.String()
	w.inline.Reset()
	w.inline.WriteString(saved)
	return out
}

func (w *mdWalker) table(n ast.Node) {
	var rows [][]string
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, w.children(c))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) && lipgloss.Width(c) > widths[i] {
				widths[i] = lipgloss.Width(c)
			}
		}
	}
	w.blank()
	for ri, r := range rows {
		parts := make([]string, len(widths))
		for i := range widths {
			var c string
			if i < len(r) {
				c = r[i]
			}
			if ri == 0 {
				c = w.style().Bold(true).Render(ansi.Strip(c))
			}
			parts[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		w.block(ansi.Truncate(strings.Join(parts, "  "), w.width(), "…"))
		if ri == 0 {
			seps := make([]string, len(widths))
			for i, wd := range widths {
				seps[i] = strings.Repeat("─", wd)
			}
			w.block(w.style().Foreground(w.m.theme.Border).Render(strings.Join(seps, "  ")))
		}
	}
	w.blank()
}

func stripTags(s string) string {
	var b strings.Builder
	in := false
	for _, r := range s {
		switch {
		case r == '<':
			in = true
		case r == '>':
			in = false
		case !in:
			b.WriteRune(r)
		}
	}
	return b.String()
}
