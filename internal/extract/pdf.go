package extract

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/standardbeagle/duckindex/internal/errors"
)

// PdfReader loads a document and concatenates every page's extracted
// text into a single Item. Pages that fail to extract are skipped
// silently — a scanned or malformed page shouldn't sink the whole
// document. The whole document's raw text (each page's trailing newline
// stripped, pages joined by a newline) is then split into lines and
// rejoined line-by-line: a space is inserted between a line and the
// next only when the prior line ends in an ASCII letter. This must
// happen at every line boundary, not just at page boundaries, so a
// mid-page line break gets the same treatment as a page break.
type PdfReader struct{}

func (r *PdfReader) Supports() []string { return []string{"pdf"} }

func (r *PdfReader) Read(ctx context.Context, path string) ([]string, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, errors.NewIoError("open", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	total := doc.NumPage()
	for i := 1; i <= total; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimSuffix(text, "\n"))
	}

	result := joinLinesWithASCIISpacing(sb.String())
	if result == "" {
		return nil, nil
	}
	return []string{result}, nil
}

// joinLinesWithASCIISpacing splits text into lines and rejoins them,
// inserting a space between a line and the next only when the prior
// line ends in an ASCII letter — the heuristic for undoing a PDF's
// mid-word line wraps without merging unrelated lines together.
func joinLinesWithASCIISpacing(text string) string {
	lines := strings.Split(text, "\n")
	var sb strings.Builder
	for i, line := range lines {
		sb.WriteString(line)
		if i == len(lines)-1 {
			continue
		}
		if endsInASCIILetter(line) {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func endsInASCIILetter(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
