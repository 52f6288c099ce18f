package parser

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/dgallion1/freteiro/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "freteiro-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	pages, err := extractPDFPages(ctx, tmpPath)
	if err != nil && ctx.Err() == nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(ctx, tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	return &document.Document{Title: titleOf(filename), Pages: pages}, nil
}

func extractPDFPages(ctx context.Context, path string) (pages []string, err error) {
	// The library panics on some malformed streams.
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(pageGlyphs(page)))
	}
	return pages, nil
}

// pageGlyphs returns nil for a page whose content stream cannot be
// interpreted; the page keeps its number and its blocks degrade to defaults.
func pageGlyphs(page pdflib.Page) (glyphs []pdflib.Text) {
	defer func() {
		if recover() != nil {
			glyphs = nil
		}
	}()
	return page.Content().Text
}

// runSeparator joins text runs within a page.
const runSeparator = "  "

// pageText rebuilds a page's text runs from positioned glyphs and joins
// them with runSeparator. A run ends at a show-text boundary, a line
// change, a move backwards or a horizontal gap wider than a fraction of
// the font size. Fonts without a Widths array report zero glyph width, so
// the glyphs of one string share an X and stay in one run.
func pageText(glyphs []pdflib.Text) string {
	var runs []string
	var cur strings.Builder
	var prev *pdflib.Text

	flush := func() {
		if cur.Len() > 0 {
			runs = append(runs, cur.String())
			cur.Reset()
		}
	}

	for i := range glyphs {
		g := &glyphs[i]
		if g.S == "\n" {
			flush()
			prev = nil
			continue
		}
		if prev != nil && startsRun(prev, g) {
			flush()
		}
		cur.WriteString(g.S)
		prev = g
	}
	flush()
	return strings.Join(runs, runSeparator)
}

func startsRun(prev, g *pdflib.Text) bool {
	size := math.Max(prev.FontSize, g.FontSize)
	lineTol := math.Max(size/2, 1)
	gapTol := math.Max(size*0.3, 1)

	if math.Abs(g.Y-prev.Y) > lineTol {
		return true
	}
	if g.X+gapTol < prev.X {
		return true
	}
	return g.X-(prev.X+prev.W) > gapTol
}

func extractPdftotext(ctx context.Context, path string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return collectPages(ctx, splitPages(string(out)))
}
