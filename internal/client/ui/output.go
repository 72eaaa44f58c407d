package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/upload"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// Printer writes styled notices to out.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) Success(format string, args ...any) {
	successColor.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Error(format string, args ...any) {
	errorColor.Fprintf(p.out, "✗ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Warning(format string, args ...any) {
	warningColor.Fprintf(p.out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Info(format string, args ...any) {
	infoColor.Fprintf(p.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) Bold(format string, args ...any) {
	boldColor.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Println writes an already formatted block.
func (p *Printer) Println(s string) {
	fmt.Fprintln(p.out, s)
}

// Failure prints err the way a user should see it: the rejection report
// line by line, the server's detail when there is one, the error text
// otherwise.
func (p *Printer) Failure(err error) {
	var report *upload.RejectionReport
	if errors.As(err, &report) {
		p.Println(Styles.ErrorBox.Render(errorColor.Sprint("Some files were rejected") + "\n\n" + rejectionLines(report)))
		return
	}
	if d := client.Detail(err); d != "" {
		p.Error("%s", d)
		return
	}
	p.Error("%v", err)
}

func rejectionLines(r *upload.RejectionReport) string {
	var s string
	for i, rej := range r.Rejected {
		if i > 0 {
			s += "\n"
		}
		s += rej.Filename + " - " + rej.Reason
	}
	return s
}

// Banner prints the welcome banner of the interactive shell.
func (p *Printer) Banner(server string) {
	p.Println(Styles.Banner.Render("docchat · " + server))
}
