package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// executor runs one input line and reports whether the shell should stop.
// The real App satisfies it; tests can provide a stub.
type executor interface {
	Execute(ctx context.Context, line string) (quit bool)
}

// runREPL reads lines from in until EOF, ctx cancellation or a quitting
// command. The prompt is printed before every read.
func runREPL(ctx context.Context, ex executor, prompt func() string, in *bufio.Reader, out io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(out, prompt())

		line, err := in.ReadString('\n')
		if strings.TrimSpace(line) != "" && ex.Execute(ctx, line) {
			return
		}
		if err != nil {
			fmt.Fprintln(out)
			return
		}
	}
}
