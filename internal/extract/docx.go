package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/standardbeagle/duckindex/internal/errors"
)

// DocxReader unzips a .docx and walks word/document.xml, emitting one
// Item per w:p paragraph whose trimmed text is non-empty.
//
// This walks the raw XML member directly rather than going through a
// general office-document library: the contract is specifically about
// w:p paragraph boundaries in that one member, a level of detail a
// document-object-model library abstracts away rather than exposes.
type DocxReader struct{}

func (r *DocxReader) Supports() []string { return []string{"docx"} }

func (r *DocxReader) Read(ctx context.Context, path string) ([]string, error) {
	return readZippedParagraphs(ctx, "docx", path, "word/document.xml", "p", "t")
}

// readZippedParagraphs is shared by the Docx and Pptx readers: both
// unzip an office document and emit one Item per paragraph-like element
// whose accumulated text is non-empty, differing only in which zip
// member(s) and element/text tag names they use.
func readZippedParagraphs(ctx context.Context, reader, path, member, paraTag, textTag string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.NewIoError("open", path, err)
	}
	defer zr.Close()

	var matches []*zip.File
	for _, f := range zr.File {
		if matchesMember(f.Name, member) {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return nil, errors.NewExtractorError(reader, path, errMissingMember(member))
	}
	sortMembersNumerically(matches, member)

	var items []string
	for _, f := range matches {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		paras, err := decodeParagraphs(f, paraTag, textTag)
		if err != nil {
			return nil, errors.NewExtractorError(reader, path, err)
		}
		items = append(items, paras...)
	}
	return items, nil
}

// sortMembersNumerically orders matches by the numeric slide index
// embedded in a glob pattern like "ppt/slides/slide*.xml" (slide2.xml
// before slide10.xml), since the zip central directory's on-disk order
// is not guaranteed to be presentation order. Members that don't carry
// a parseable number, or an exact (non-glob) member, keep their
// original relative order via a stable sort.
func sortMembersNumerically(matches []*zip.File, pattern string) {
	if !strings.Contains(pattern, "*") {
		return
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	numberOf := func(name string) (int, bool) {
		mid := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		n, err := strconv.Atoi(mid)
		return n, err == nil
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ni, oki := numberOf(matches[i].Name)
		nj, okj := numberOf(matches[j].Name)
		if oki && okj {
			return ni < nj
		}
		return false
	})
}

type errMissingMember string

func (e errMissingMember) Error() string {
	return "missing expected member " + string(e)
}

// matchesMember supports both an exact member name (docx) and a glob
// over numbered slide members (pptx's ppt/slides/slide*.xml).
func matchesMember(name, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return name == pattern
	}
	prefix, suffix, _ := strings.Cut(pattern, "*")
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix)
}

func decodeParagraphs(f *zip.File, paraTag, textTag string) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var items []string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != paraTag {
			continue
		}
		text, err := collectText(dec, start.Name, textTag)
		if err != nil {
			return nil, err
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items, nil
}

// collectText accumulates every textTag element's character data inside
// the element that opened with start, stopping at its matching end tag.
func collectText(dec *xml.Decoder, start xml.Name, textTag string) (string, error) {
	var sb strings.Builder
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == start.Local {
				depth++
			}
			if t.Name.Local == textTag {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == start.Local {
				depth--
			}
			if t.Name.Local == textTag {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
