package render

type Kind int

const (
	KindDocument Kind = iota + 1
	KindParagraph
	KindHeading
	KindCodeBlock
	KindBlockquote
	KindList
	KindListItem
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell
	// KindPreformatted holds text shown verbatim, never parsed.
	KindPreformatted

	KindText
	KindEmphasis
	KindCodeSpan
	KindLink
	KindStrikethrough
	KindLineBreak
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindCodeBlock:
		return "code_block"
	case KindBlockquote:
		return "blockquote"
	case KindList:
		return "list"
	case KindListItem:
		return "list_item"
	case KindThematicBreak:
		return "thematic_break"
	case KindTable:
		return "table"
	case KindTableRow:
		return "table_row"
	case KindTableCell:
		return "table_cell"
	case KindPreformatted:
		return "preformatted"
	case KindText:
		return "text"
	case KindEmphasis:
		return "emphasis"
	case KindCodeSpan:
		return "code_span"
	case KindLink:
		return "link"
	case KindStrikethrough:
		return "strikethrough"
	case KindLineBreak:
		return "line_break"
	}
	return "unknown"
}

// Node is one element of a rendered message.
//
// Level is the heading level, the emphasis strength (1 or 2) or the first
// number of an ordered list. Text holds the literal content of leaves, code
// blocks and preformatted nodes; Children holds everything else.
type Node struct {
	Kind     Kind
	Level    int
	Ordered  bool
	Header   bool
	Checked  *bool
	Lang     string
	Text     string
	URL      string
	Children []*Node
	Copy     *CopyAction
}

// PlainText concatenates the literal text below n.
func (n *Node) PlainText() string {
	if n == nil {
		return ""
	}
	if len(n.Children) == 0 {
		if n.Kind == KindLineBreak {
			return "\n"
		}
		return n.Text
	}
	var s string
	for _, c := range n.Children {
		s += c.PlainText()
	}
	return s
}

// CodeBlocks returns the fenced code blocks below n in document order.
func CodeBlocks(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	if n.Kind == KindCodeBlock {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, CodeBlocks(c)...)
	}
	return out
}
