package extract

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"github.com/standardbeagle/duckindex/internal/errors"
)

// OcrReader feeds raster images to the system tesseract binary. No pure
// Go Tesseract binding appears anywhere in the dependency corpus; the
// corpus's own OCR-adjacent tooling (a PDF-to-searchable-PDF pipeline)
// shells out to the same binary via os/exec rather than linking one in,
// so that is the idiom this reader follows too.
type OcrReader struct {
	// Languages is the -l argument, e.g. "eng+chi_sim".
	Languages string
}

func (r *OcrReader) Supports() []string {
	return []string{"jpg", "jpeg", "png", "tif", "tiff", "gif", "webp"}
}

func (r *OcrReader) Read(ctx context.Context, path string) ([]string, error) {
	lang := r.Languages
	if lang == "" {
		lang = "eng+chi_sim"
	}

	tmp, err := os.CreateTemp("", "duckindex-ocr-*")
	if err != nil {
		return nil, errors.NewIoError("create temp", path, err)
	}
	outBase := tmp.Name()
	tmp.Close()
	os.Remove(outBase)
	defer os.Remove(outBase + ".txt")

	cmd := exec.CommandContext(ctx, "tesseract", path, outBase, "-l", lang, "txt")
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.NewIoError("tesseract", path, errWithOutput{err, out})
	}

	raw, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return nil, errors.NewIoError("read ocr output", path, err)
	}

	return splitRecognizedText(string(raw)), nil
}

type errWithOutput struct {
	err    error
	output []byte
}

func (e errWithOutput) Error() string {
	if len(e.output) == 0 {
		return e.err.Error()
	}
	return e.err.Error() + ": " + string(e.output)
}

func (e errWithOutput) Unwrap() error { return e.err }

// splitRecognizedText splits OCR output into lines, drops blank lines,
// and collapses whitespace that immediately follows a CJK ideograph —
// Tesseract's CJK mode inserts spurious word-gap spaces between
// characters that should read as contiguous text.
func splitRecognizedText(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		collapsed := collapsePostCJKWhitespace(line)
		if strings.TrimSpace(collapsed) == "" {
			continue
		}
		items = append(items, collapsed)
	}
	return items
}

func collapsePostCJKWhitespace(line string) string {
	var sb strings.Builder
	runes := []rune(line)
	i := 0
	for i < len(runes) {
		r := runes[i]
		sb.WriteRune(r)
		i++
		if isCJKIdeograph(r) {
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
		}
	}
	return sb.String()
}

func isCJKIdeograph(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FA5
}
