// Package render turns chat messages into a tree of display nodes.
//
// Assistant text is parsed as GitHub flavoured markdown. Fenced code blocks
// carry their language tag and a CopyAction. User text is never parsed: it
// becomes a single preformatted node.
package render

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

// Message renders m according to its author.
func (r *Renderer) Message(m models.Message) *Node {
	if m.IsUser() {
		return Literal(m.Text)
	}
	return r.Markdown(m.Text)
}

// Literal wraps s in a document holding one preformatted node.
func Literal(s string) *Node {
	return &Node{Kind: KindDocument, Children: []*Node{{Kind: KindPreformatted, Text: s}}}
}

// Markdown parses src into a document node.
func (r *Renderer) Markdown(src string) *Node {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))
	c := converter{source: source}
	return c.node(doc)
}

type converter struct {
	source []byte
}

func (c converter) children(n ast.Node) []*Node {
	var out []*Node
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if node := c.node(ch); node != nil {
			out = append(out, node)
		}
	}
	return mergeText(out)
}

func (c converter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.source))
	}
	return b.String()
}

func (c converter) node(n ast.Node) *Node {
	switch n := n.(type) {
	case *ast.Document:
		return &Node{Kind: KindDocument, Children: c.children(n)}
	case *ast.Paragraph, *ast.TextBlock:
		return &Node{Kind: KindParagraph, Children: c.children(n)}
	case *ast.Heading:
		return &Node{Kind: KindHeading, Level: n.Level, Children: c.children(n)}
	case *ast.FencedCodeBlock:
		code := c.lines(n)
		return &Node{
			Kind: KindCodeBlock,
			Lang: string(n.Language(c.source)),
			Text: strings.TrimSuffix(code, "\n"),
			Copy: newCopyAction(code),
		}
	case *ast.CodeBlock:
		code := c.lines(n)
		return &Node{Kind: KindPreformatted, Text: strings.TrimSuffix(code, "\n")}
	case *ast.HTMLBlock:
		// shown as written, never interpreted
		return &Node{Kind: KindPreformatted, Text: strings.TrimSuffix(c.lines(n), "\n")}
	case *ast.Blockquote:
		return &Node{Kind: KindBlockquote, Children: c.children(n)}
	case *ast.List:
		return &Node{Kind: KindList, Ordered: n.IsOrdered(), Level: n.Start, Children: c.children(n)}
	case *ast.ListItem:
		item := &Node{Kind: KindListItem, Children: c.children(n)}
		item.Checked = taskState(n)
		return item
	case *ast.ThematicBreak:
		return &Node{Kind: KindThematicBreak}
	case *east.Table:
		return &Node{Kind: KindTable, Children: c.children(n)}
	case *east.TableHeader:
		return &Node{Kind: KindTableRow, Header: true, Children: c.children(n)}
	case *east.TableRow:
		return &Node{Kind: KindTableRow, Children: c.children(n)}
	case *east.TableCell:
		return &Node{Kind: KindTableCell, Children: c.children(n)}
	case *east.TaskCheckBox:
		return nil
	case *ast.Text:
		s := string(n.Segment.Value(c.source))
		if n.SoftLineBreak() {
			s += " "
		}
		t := &Node{Kind: KindText, Text: s}
		if n.HardLineBreak() {
			return &Node{Kind: KindText, Children: []*Node{t, {Kind: KindLineBreak}}}
		}
		return t
	case *ast.String:
		return &Node{Kind: KindText, Text: string(n.Value)}
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(c.source))
		}
		return &Node{Kind: KindText, Text: b.String()}
	case *ast.Emphasis:
		return &Node{Kind: KindEmphasis, Level: n.Level, Children: c.children(n)}
	case *ast.CodeSpan:
		var b strings.Builder
		for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if t, ok := ch.(*ast.Text); ok {
				b.Write(t.Segment.Value(c.source))
			}
		}
		return &Node{Kind: KindCodeSpan, Text: b.String()}
	case *ast.Link:
		return &Node{Kind: KindLink, URL: string(n.Destination), Children: c.children(n)}
	case *ast.AutoLink:
		url := string(n.URL(c.source))
		return &Node{Kind: KindLink, URL: url, Children: []*Node{{Kind: KindText, Text: string(n.Label(c.source))}}}
	case *ast.Image:
		return &Node{Kind: KindLink, URL: string(n.Destination), Children: c.children(n)}
	case *east.Strikethrough:
		return &Node{Kind: KindStrikethrough, Children: c.children(n)}
	}

	if n.HasChildren() {
		return &Node{Kind: KindText, Children: c.children(n)}
	}
	return nil
}

func taskState(item *ast.ListItem) *bool {
	first := item.FirstChild()
	if first == nil {
		return nil
	}
	if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
		checked := box.IsChecked
		return &checked
	}
	return nil
}

// mergeText joins runs of plain text leaves and flattens the text wrappers
// produced for hard line breaks.
func mergeText(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Kind == KindText && len(n.Children) > 0 {
			out = append(out, n.Children...)
			continue
		}
		if n.Kind == KindText && len(out) > 0 {
			last := out[len(out)-1]
			if last.Kind == KindText && len(last.Children) == 0 {
				last.Text += n.Text
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
