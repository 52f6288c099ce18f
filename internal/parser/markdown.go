package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/freteiro/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown exports of a report. A thematic break
// (---) separates pages.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var pages []string
	var current bytes.Buffer
	flushPage := func() {
		t := strings.TrimSpace(current.String())
		if t != "" {
			pages = append(pages, t)
		}
		current.Reset()
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if _, ok := n.(*ast.ThematicBreak); ok {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			flushPage()
			continue
		}
		t := extractText(n, src)
		if t == "" {
			continue
		}
		// Two spaces between blocks, as between text runs of a PDF page.
		if current.Len() > 0 {
			current.WriteString("  ")
		}
		current.WriteString(t)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flushPage()

	return &document.Document{Title: titleOf(filename), Pages: pages}, nil
}

// extractText gets the text content of a goldmark AST node. Raw lines are
// only used for leaf blocks such as code, so paragraph text is not doubled.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		child := extractText(c, src)
		if c.Type() == ast.TypeBlock {
			buf.WriteString("  " + child + "  ")
		} else {
			buf.WriteString(child)
		}
	}
	return strings.TrimSpace(buf.String())
}
