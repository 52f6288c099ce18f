package document

import "strings"

// PageBreak is appended after every page when building the linear text so
// that tokens at the end of one page never merge with the next.
const PageBreak = "  [PAGE_BREAK]  "

// Document is the linear text of a read report, one entry per page.
type Document struct {
	Title string   // From metadata or filename
	Pages []string // Page text in document order
}

// FullText joins all pages, each followed by PageBreak.
func (d *Document) FullText() string {
	return JoinPages(d.Pages)
}

// JoinPages builds the linear text for a sequence of page texts. No-break
// spaces, common in PDF text, become plain spaces.
func JoinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString(strings.ReplaceAll(p, "\u00a0", " "))
		b.WriteString(PageBreak)
	}
	return b.String()
}

// Block is one manifest entry cut from the linear text.
type Block struct {
	Text           string // Raw text from the header up to the next header
	Index          int    // Sequence number within the document
	Offset         int    // Byte offset of the header in the linear text
	Date           string // DD/MM/YYYY, display only
	ManifestNumber string
}
