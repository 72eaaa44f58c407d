package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/render"
	"github.com/dmitrijs2005/docchat/internal/client/upload"
	"github.com/dmitrijs2005/docchat/internal/common"
)

func init() {
	color.NoColor = true
}

type okClipboard struct{}

func (okClipboard) WriteAll(string) error { return nil }

func TestTranscript_NumbersCodeBlocksAcrossMessages(t *testing.T) {
	r := render.New()
	ts := time.Date(2026, 1, 1, 9, 30, 0, 0, time.Local)
	msgs := []models.Message{
		{ID: "1", Role: models.RoleUser, Text: "show me ```code```", Timestamp: ts, State: models.StateConfirmed},
		{ID: "2", Role: models.RoleAssistant, Text: "```go\na := 1\n```\n\nand\n\n```\nb\n```", Timestamp: ts, State: models.StateConfirmed},
		{ID: "3", Role: models.RoleAssistant, Text: "```sh\nls\n```", Timestamp: ts, State: models.StateFailed},
	}

	out, actions := Transcript(r, msgs, ts, 1)

	require.Len(t, actions, 3)
	assert.Equal(t, "a := 1", actions[0].Text())
	assert.Equal(t, "b", actions[1].Text())
	assert.Equal(t, "ls", actions[2].Text())

	assert.Contains(t, out, "You")
	assert.Contains(t, out, "show me ```code```")
	assert.Contains(t, out, "[copy 1]")
	assert.Contains(t, out, "[copy 2]")
	assert.Contains(t, out, "[copy 3]")
	assert.Contains(t, out, "text [copy 2]")
	assert.Contains(t, out, "(failed)")
}

func TestTranscript_CopiedHint(t *testing.T) {
	r := render.New()
	now := time.Now()
	msgs := []models.Message{{Role: models.RoleAssistant, Text: "```\nx\n```"}}

	_, actions := Transcript(r, msgs, now, 1)
	require.NoError(t, actions[0].Copy(okClipboard{}, now))

	doc := r.Markdown(msgs[0].Text)
	blocks := render.CodeBlocks(doc)
	blocks[0].Copy = actions[0]
	assert.Contains(t, Node(doc, now.Add(time.Second)), "Copied!")
	assert.NotContains(t, Node(doc, now.Add(3*time.Second)), "Copied!")
}

func TestTranscript_ContinuesNumbering(t *testing.T) {
	out, actions := Transcript(render.New(), []models.Message{{Role: models.RoleAssistant, Text: "```\nx\n```"}}, time.Now(), 4)
	assert.Len(t, actions, 1)
	assert.Contains(t, out, "[copy 4]")
}

func TestMessage_OmitsUnknownTime(t *testing.T) {
	r := render.New()
	out := Message(r, models.Message{Role: models.RoleUser, Text: "hi"}, time.Now())
	assert.Contains(t, out, "You")
	assert.NotContains(t, out, "·")

	ts := time.Date(2026, 1, 1, 9, 30, 0, 0, time.Local)
	out = Message(r, models.Message{Role: models.RoleUser, Text: "hi", Timestamp: ts}, time.Now())
	assert.Contains(t, out, "· 09:30")
}

func TestNode_Markdown(t *testing.T) {
	doc := render.New().Markdown("## Plan\n\n1. first\n2. **second**\n\n> note\n\nsee [docs](https://x.dev)")
	out := Node(doc, time.Now())

	assert.Contains(t, out, "## Plan")
	assert.Contains(t, out, "1. first")
	assert.Contains(t, out, "2. second")
	assert.Contains(t, out, "│ note")
	assert.Contains(t, out, "docs (https://x.dev)")
}

func TestTasks(t *testing.T) {
	out := Tasks([]models.UploadTask{
		{Filename: "report.pdf", Size: 5 << 20, Status: models.UploadUploading, Progress: 40},
		{Filename: "bad.txt", Size: 10, Status: models.UploadError, Progress: 20, Err: "Error processing file"},
	})
	assert.Contains(t, out, "report.pdf")
	assert.Contains(t, out, "5 MB")
	assert.Contains(t, out, " 40%")
	assert.Contains(t, out, "error Error processing file")
	assert.Equal(t, Styles.Muted.Render("No uploads"), Tasks(nil))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[░░░░░░░░░░░░░░░░░░░░]   0%", ProgressBar(-5))
	assert.Equal(t, "[██████████░░░░░░░░░░]  50%", ProgressBar(50))
	assert.Equal(t, "[████████████████████] 100%", ProgressBar(140))
}

func TestFiles_StaleNotice(t *testing.T) {
	files := []models.FileRecord{{Filename: "a.md", Size: 1536, UploadedAt: time.Now()}}
	assert.NotContains(t, Files(files, false), "offline")
	out := Files(files, true)
	assert.Contains(t, out, "1.5 KB")
	assert.Contains(t, out, "offline")
}

func TestUsers_Footer(t *testing.T) {
	out := Users(&models.UserList{
		Users:    []models.AdminUser{{ID: 3, Username: "bob", IsBlocked: true}},
		Total:    41,
		Page:     2,
		PageSize: 20,
	})
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "blocked")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "page 2 of 3 · 41 users")
}

func TestConversations(t *testing.T) {
	last := "a very long message that will definitely be cut off somewhere"
	out := Conversations([]models.Conversation{
		{ID: "c1", Title: "Billing", MessageCount: 2, LastMessage: &last},
		{ID: "c2", Title: "Setup"},
	}, "c2", false)
	assert.Contains(t, out, "Billing")
	assert.Contains(t, out, "▶")
	assert.Contains(t, out, "...")
}

func TestPrinter_Failure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Failure(&upload.RejectionReport{Rejected: []upload.Rejection{
		{Filename: "notes.exe", Reason: upload.ReasonInvalidType},
		{Filename: "big.pdf", Reason: upload.ReasonTooLarge},
	}})
	assert.Contains(t, buf.String(), "notes.exe - Invalid type")
	assert.Contains(t, buf.String(), "big.pdf - Too large")

	buf.Reset()
	p.Failure(&client.APIError{Status: 400, Detail: "Current password is incorrect", Err: common.ErrConflict})
	assert.Equal(t, "✗ Current password is incorrect\n", buf.String())

	buf.Reset()
	p.Failure(errors.New("boom"))
	assert.Equal(t, "✗ boom\n", buf.String())
}
