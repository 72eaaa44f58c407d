package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	lines []string
}

func (s *stubExec) Execute(ctx context.Context, line string) bool {
	s.lines = append(s.lines, strings.TrimSpace(line))
	return strings.TrimSpace(line) == "exit"
}

func TestRunREPL_StopsOnQuit(t *testing.T) {
	ex := &stubExec{}
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("help\n\n  list  \nexit\nnever\n"))

	runREPL(context.Background(), ex, func() string { return "> " }, in, &out)

	assert.Equal(t, []string{"help", "list", "exit"}, ex.lines)
	assert.Equal(t, 4, strings.Count(out.String(), "> "))
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	ex := &stubExec{}
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("list"))

	runREPL(context.Background(), ex, func() string { return "> " }, in, &out)

	assert.Equal(t, []string{"list"}, ex.lines)
}

func TestRunREPL_StopsOnCancel(t *testing.T) {
	ex := &stubExec{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runREPL(ctx, ex, func() string { return "> " }, bufio.NewReader(strings.NewReader("list\n")), &bytes.Buffer{})
	assert.Empty(t, ex.lines)
}
