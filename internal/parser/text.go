package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/freteiro/internal/document"
)

// TextParser handles plain-text dumps, one page per form feed as written by
// pdftotext.
type TextParser struct{}

func (p *TextParser) Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read text: %w", err)
	}
	pages, err := collectPages(ctx, splitPages(string(data)))
	if err != nil {
		return nil, err
	}
	return &document.Document{Title: titleOf(filename), Pages: pages}, nil
}

// splitPages cuts text on form feeds, dropping a trailing empty page.
func splitPages(text string) []string {
	if text == "" {
		return nil
	}
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}

// collectPages yields between pages so a cancelled read stops promptly.
func collectPages(ctx context.Context, pages []string) ([]string, error) {
	out := make([]string, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, nil
}
