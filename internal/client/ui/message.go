package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/render"
)

// Transcript renders a message log. Code blocks are numbered from first
// across the whole log in the order returned by render.CodeBlocks, so the
// numbers can be fed back to a copy command.
func Transcript(r *render.Renderer, msgs []models.Message, now time.Time, first int) (string, []*render.CopyAction) {
	var (
		parts   []string
		actions []*render.CopyAction
	)
	for _, m := range msgs {
		doc := r.Message(m)
		w := nodeWriter{now: now, firstCode: first + len(actions)}
		body := w.render(doc)
		for _, cb := range render.CodeBlocks(doc) {
			actions = append(actions, cb.Copy)
		}
		parts = append(parts, messageHeader(m)+"\n"+body)
	}
	return strings.Join(parts, "\n\n"), actions
}

// Message renders a single message.
func Message(r *render.Renderer, m models.Message, now time.Time) string {
	s, _ := Transcript(r, []models.Message{m}, now, 1)
	return s
}

func messageHeader(m models.Message) string {
	label := Styles.BotLabel.Render("Assistant")
	if m.IsUser() {
		label = Styles.UserLabel.Render("You")
	}
	h := label
	if !m.Timestamp.IsZero() {
		h += Styles.Muted.Render(" · " + m.Timestamp.Local().Format("15:04"))
	}
	switch m.State {
	case models.StatePending:
		h += Styles.Muted.Render(" (sending…)")
	case models.StateFailed:
		h += errorColor.Sprint(" (failed)")
	}
	return h
}

// Node renders a render tree without a message header.
func Node(n *render.Node, now time.Time) string {
	w := nodeWriter{now: now, firstCode: 1}
	return w.render(n)
}

type nodeWriter struct {
	now       time.Time
	firstCode int
	code      int
}

func (w *nodeWriter) render(n *render.Node) string {
	return strings.TrimRight(w.block(n), "\n")
}

func (w *nodeWriter) blocks(nodes []*render.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, c := range nodes {
		parts = append(parts, strings.TrimRight(w.block(c), "\n"))
	}
	return strings.Join(parts, "\n\n")
}

func (w *nodeWriter) block(n *render.Node) string {
	switch n.Kind {
	case render.KindDocument:
		return w.blocks(n.Children)
	case render.KindParagraph:
		return w.inline(n.Children)
	case render.KindHeading:
		return Styles.Heading.Render(strings.Repeat("#", n.Level) + " " + w.inline(n.Children))
	case render.KindPreformatted:
		return n.Text
	case render.KindCodeBlock:
		return w.codeBlock(n)
	case render.KindBlockquote:
		return prefixLines(w.blocks(n.Children), Styles.Quote.Render("│ "), Styles.Quote.Render("│ "))
	case render.KindList:
		return w.list(n)
	case render.KindThematicBreak:
		return Styles.Muted.Render(strings.Repeat("─", 40))
	case render.KindTable:
		return w.table(n)
	}
	return w.inline([]*render.Node{n})
}

func (w *nodeWriter) codeBlock(n *render.Node) string {
	idx := w.firstCode + w.code
	w.code++

	lang := n.Lang
	if lang == "" {
		lang = "text"
	}
	hint := Styles.Muted.Render(fmt.Sprintf("[copy %d]", idx))
	if n.Copy != nil && n.Copy.Copied(w.now) {
		hint = Styles.Copied.Render("Copied!")
	}
	header := Styles.CodeLabel.Render(lang) + " " + hint
	body := prefixLines(Styles.CodeBlock.Render(n.Text), "  ", "  ")
	return header + "\n" + body
}

func (w *nodeWriter) list(n *render.Node) string {
	items := make([]string, 0, len(n.Children))
	for i, item := range n.Children {
		marker := "• "
		if n.Ordered {
			marker = fmt.Sprintf("%d. ", n.Level+i)
		}
		if item.Checked != nil {
			if *item.Checked {
				marker += "[x] "
			} else {
				marker += "[ ] "
			}
		}
		body := w.blocks(item.Children)
		items = append(items, prefixLines(body, marker, strings.Repeat(" ", lipgloss.Width(marker))))
	}
	return strings.Join(items, "\n")
}

func (w *nodeWriter) table(n *render.Node) string {
	t := table.New().Border(lipgloss.NormalBorder())
	for _, row := range n.Children {
		cells := make([]string, 0, len(row.Children))
		for _, c := range row.Children {
			cells = append(cells, w.inline(c.Children))
		}
		if row.Header {
			t.Headers(cells...)
		} else {
			t.Row(cells...)
		}
	}
	return t.String()
}

func (w *nodeWriter) inline(nodes []*render.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		switch n.Kind {
		case render.KindText:
			if len(n.Children) > 0 {
				b.WriteString(w.inline(n.Children))
			} else {
				b.WriteString(n.Text)
			}
		case render.KindLineBreak:
			b.WriteString("\n")
		case render.KindEmphasis:
			if n.Level >= 2 {
				b.WriteString(Styles.Bold.Render(w.inline(n.Children)))
			} else {
				b.WriteString(Styles.Italic.Render(w.inline(n.Children)))
			}
		case render.KindStrikethrough:
			b.WriteString(Styles.Strike.Render(w.inline(n.Children)))
		case render.KindCodeSpan:
			b.WriteString(Styles.InlineCode.Render(n.Text))
		case render.KindLink:
			label := w.inline(n.Children)
			b.WriteString(Styles.Link.Render(label))
			if n.URL != "" && n.URL != label {
				b.WriteString(Styles.Muted.Render(" (" + n.URL + ")"))
			}
		default:
			b.WriteString(w.block(n))
		}
	}
	return b.String()
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = first + lines[i]
		} else {
			lines[i] = rest + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
