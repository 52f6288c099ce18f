package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/freteiro/internal/document"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx reports. Word files carry no reliable page
// boundaries, so the whole body is read as one page.
type DOCXParser struct{}

func (p *DOCXParser) Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "freteiro-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var runs []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if t := docxParagraphText(para); t != "" {
			runs = append(runs, t)
		}
	}

	var pages []string
	if len(runs) > 0 {
		pages = []string{strings.Join(runs, "  ")}
	}
	return &document.Document{Title: titleOf(filename), Pages: pages}, nil
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
