package chunker

import (
	"regexp"
	"strings"

	"github.com/dgallion1/freteiro/internal/document"
)

// headerPattern marks the start of every manifest entry:
// "Romaneio 2024/03/15-001".
var headerPattern = regexp.MustCompile(`Romaneio\s+(\d{4}/\d{2}/\d{2})-(\d+)`)

// Split cuts the linear document text into one block per manifest header.
// Each block runs from its header to the next header, or to the end of the
// text for the last one. No headers means no blocks.
func Split(text string) []document.Block {
	matches := headerPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]document.Block, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		blockText := text[start:end]

		date, number, ok := parseHeader(blockText)
		if !ok {
			continue
		}
		blocks = append(blocks, document.Block{
			Text:           blockText,
			Index:          len(blocks),
			Offset:         start,
			Date:           date,
			ManifestNumber: number,
		})
	}
	return blocks
}

// parseHeader reads the date and manifest number from the block's header.
func parseHeader(blockText string) (date, number string, ok bool) {
	m := headerPattern.FindStringSubmatch(blockText)
	if m == nil {
		return "", "", false
	}
	return displayDate(m[1]), m[2], true
}

// displayDate turns YYYY/MM/DD into DD/MM/YYYY. Values are not validated.
func displayDate(ymd string) string {
	parts := strings.Split(ymd, "/")
	if len(parts) != 3 {
		return ymd
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
