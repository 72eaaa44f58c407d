package render

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

type memClipboard struct {
	text string
	err  error
}

func (m *memClipboard) WriteAll(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func TestMarkdown_FencedCodeBlock(t *testing.T) {
	r := New()
	doc := r.Markdown("Here:\n\n```go\nfmt.Println(\"hi\")\n```\n")

	require.Equal(t, KindDocument, doc.Kind)
	require.Len(t, doc.Children, 2)
	assert.Equal(t, KindParagraph, doc.Children[0].Kind)
	assert.Equal(t, "Here:", doc.Children[0].PlainText())

	code := doc.Children[1]
	assert.Equal(t, KindCodeBlock, code.Kind)
	assert.Equal(t, "go", code.Lang)
	assert.Equal(t, `fmt.Println("hi")`, code.Text)
	require.NotNil(t, code.Copy)
	assert.Equal(t, `fmt.Println("hi")`, code.Copy.Text())
}

func TestMarkdown_CodeBlockWithoutLanguage(t *testing.T) {
	doc := New().Markdown("```\na\nb\n\n```")
	blocks := CodeBlocks(doc)
	require.Len(t, blocks, 1)
	assert.Empty(t, blocks[0].Lang)
	// exactly one trailing newline is dropped
	assert.Equal(t, "a\nb\n", blocks[0].Copy.Text())
}

func TestMarkdown_Structure(t *testing.T) {
	src := "# Title\n\nSome **bold** and *em* with `code` and [link](https://example.com).\n\n" +
		"- [x] done\n- todo\n\n1. one\n2. two\n\n> quoted\n\n---\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	doc := New().Markdown(src)

	kinds := make([]Kind, 0, len(doc.Children))
	for _, c := range doc.Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []Kind{
		KindHeading, KindParagraph, KindList, KindList, KindBlockquote, KindThematicBreak, KindTable,
	}, kinds)

	assert.Equal(t, 1, doc.Children[0].Level)
	assert.Equal(t, "Title", doc.Children[0].PlainText())

	para := doc.Children[1]
	var inline []Kind
	for _, c := range para.Children {
		inline = append(inline, c.Kind)
	}
	assert.Contains(t, inline, KindEmphasis)
	assert.Contains(t, inline, KindCodeSpan)
	assert.Contains(t, inline, KindLink)
	assert.Equal(t, "Some bold and em with code and link.", para.PlainText())

	tasks := doc.Children[2]
	assert.False(t, tasks.Ordered)
	require.Len(t, tasks.Children, 2)
	require.NotNil(t, tasks.Children[0].Checked)
	assert.True(t, *tasks.Children[0].Checked)
	assert.Nil(t, tasks.Children[1].Checked)

	ordered := doc.Children[3]
	assert.True(t, ordered.Ordered)
	assert.Equal(t, 1, ordered.Level)

	table := doc.Children[6]
	require.Len(t, table.Children, 2)
	assert.True(t, table.Children[0].Header)
	assert.Equal(t, "1", table.Children[1].Children[0].PlainText())
}

func TestMessage_UserTextIsLiteral(t *testing.T) {
	r := New()
	msg := models.Message{Text: "# not a heading\n```\nx\n```", Role: models.RoleUser}

	doc := r.Message(msg)
	require.Len(t, doc.Children, 1)
	assert.Equal(t, KindPreformatted, doc.Children[0].Kind)
	assert.Equal(t, msg.Text, doc.Children[0].Text)
	assert.Empty(t, CodeBlocks(doc))

	msg.Role = models.RoleAssistant
	doc = r.Message(msg)
	assert.Equal(t, KindHeading, doc.Children[0].Kind)
	assert.Len(t, CodeBlocks(doc), 1)
}

func TestMarkdown_RawHTMLIsNotInterpreted(t *testing.T) {
	doc := New().Markdown("hello <b>x</b>")
	assert.Equal(t, "hello <b>x</b>", doc.PlainText())
}

func TestCopyAction_Window(t *testing.T) {
	a := newCopyAction("echo hi\n")
	cb := &memClipboard{}
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, a.Copied(start))

	require.NoError(t, a.Copy(cb, start))
	assert.Equal(t, "echo hi", cb.text)
	assert.True(t, a.Copied(start))
	assert.True(t, a.Copied(start.Add(1999*time.Millisecond)))
	assert.False(t, a.Copied(start.Add(CopiedWindow)))
}

func TestCopyAction_FailedWrite(t *testing.T) {
	a := newCopyAction("x")
	now := time.Now()
	err := a.Copy(&memClipboard{err: errors.New("no clipboard")}, now)
	assert.Error(t, err)
	assert.False(t, a.Copied(now))
}

func TestCopyAction_CapturedAtRenderTime(t *testing.T) {
	r := New()
	src := "```\nfirst\n```"
	action := CodeBlocks(r.Markdown(src))[0].Copy

	src = "```\nsecond\n```"
	_ = r.Markdown(src)
	assert.Equal(t, "first", action.Text())
}
