package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/freteiro/internal/document"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML exports of a report. Each <hr> ends a page and
// every text node becomes one text run.
type HTMLParser struct{}

func (p *HTMLParser) Parse(ctx context.Context, r io.Reader, filename string) (*document.Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var pages []string
	var runs []string
	var walkErr error
	flushPage := func() {
		if len(runs) > 0 {
			pages = append(pages, strings.Join(runs, "  "))
		}
		runs = nil
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if walkErr != nil {
			return
		}
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				runs = append(runs, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "head":
				return
			case "hr":
				if walkErr = ctx.Err(); walkErr != nil {
					return
				}
				flushPage()
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	if walkErr != nil {
		return nil, walkErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	flushPage()

	return &document.Document{Title: titleOf(filename), Pages: pages}, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
