package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/common"
)

const (
	// MaxFileSize is the largest accepted document, 10 MiB.
	MaxFileSize int64 = 10 << 20

	ReasonInvalidType = "Invalid type (only PDF, TXT, MD, DOCX allowed)"
	ReasonTooLarge    = "Too large (max 10MB)"
)

var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"md":   {},
	"docx": {},
}

// Candidate is a file offered for upload.
type Candidate struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromPath builds a candidate for a local file.
func FromPath(path string) (Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if info.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}
	return Candidate{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

type Rejection struct {
	Filename string
	Reason   string
}

// RejectionReport lists every file refused by pre-flight validation. It
// matches common.ErrValidationRejected with errors.Is.
type RejectionReport struct {
	Rejected []Rejection
}

func (r *RejectionReport) Error() string {
	lines := make([]string, 0, len(r.Rejected)+1)
	lines = append(lines, "Some files were rejected:")
	for _, rej := range r.Rejected {
		lines = append(lines, rej.Filename+" - "+rej.Reason)
	}
	return strings.Join(lines, "\n")
}

func (r *RejectionReport) Unwrap() error { return common.ErrValidationRejected }

// Validate splits candidates into the ones allowed to transfer and a report
// of the rest. The report is nil when nothing was rejected. The type check
// runs first, so a file failing both is reported for its type.
func Validate(cands []Candidate) ([]Candidate, *RejectionReport) {
	var (
		valid    []Candidate
		rejected []Rejection
	)
	for _, c := range cands {
		switch {
		case !allowedType(c.Name):
			rejected = append(rejected, Rejection{Filename: c.Name, Reason: ReasonInvalidType})
		case c.Size > MaxFileSize:
			rejected = append(rejected, Rejection{Filename: c.Name, Reason: ReasonTooLarge})
		default:
			valid = append(valid, c)
		}
	}
	if len(rejected) == 0 {
		return valid, nil
	}
	return valid, &RejectionReport{Rejected: rejected}
}

func allowedType(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(name[i+1:])]
	return ok
}
