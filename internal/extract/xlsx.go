package extract

import "context"

// XlsxReader unzips a .xlsx and parses xl/sharedStrings.xml, emitting
// one Item per si element whose accumulated t text is non-empty. A
// shared-string entry can be a plain <t> or a run of <r><t>...</t></r>
// fragments; both shapes collapse to the same accumulated text.
type XlsxReader struct{}

func (r *XlsxReader) Supports() []string { return []string{"xlsx"} }

func (r *XlsxReader) Read(ctx context.Context, path string) ([]string, error) {
	return readZippedParagraphs(ctx, "xlsx", path, "xl/sharedStrings.xml", "si", "t")
}
