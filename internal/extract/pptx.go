package extract

import "context"

// PptxReader unzips a .pptx and, for every ppt/slides/slideN.xml member,
// emits one Item per a:p paragraph whose trimmed text is non-empty.
// Members are visited in numeric slide order (slide2 before slide10),
// not the zip central directory's on-disk order, so item order matches
// presentation order regardless of how the file was written.
type PptxReader struct{}

func (r *PptxReader) Supports() []string { return []string{"pptx"} }

func (r *PptxReader) Read(ctx context.Context, path string) ([]string, error) {
	return readZippedParagraphs(ctx, "pptx", path, "ppt/slides/slide*.xml", "p", "t")
}
