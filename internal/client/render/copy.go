package render

import (
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// CopiedWindow is how long a copy action reports itself as copied.
const CopiedWindow = 2 * time.Second

type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// CopyAction copies the literal text of a code block as it was at render
// time.
type CopyAction struct {
	text string

	mu       sync.Mutex
	copiedAt time.Time
}

func newCopyAction(code string) *CopyAction {
	return &CopyAction{text: strings.TrimSuffix(code, "\n")}
}

func (a *CopyAction) Text() string {
	return a.text
}

// Copy writes the captured text to cb and starts the copied window at now.
// A failed write leaves the previous state untouched.
func (a *CopyAction) Copy(cb Clipboard, now time.Time) error {
	if err := cb.WriteAll(a.text); err != nil {
		return err
	}
	a.mu.Lock()
	a.copiedAt = now
	a.mu.Unlock()
	return nil
}

// Copied reports whether the last successful copy happened less than
// CopiedWindow before now.
func (a *CopyAction) Copied(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.copiedAt.IsZero() {
		return false
	}
	return now.Sub(a.copiedAt) < CopiedWindow
}
