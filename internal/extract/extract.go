package extract

import (
	"github.com/dgallion1/freteiro/internal/chunker"
	"github.com/dgallion1/freteiro/internal/document"
	"github.com/dgallion1/freteiro/internal/manifest"
	"github.com/shopspring/decimal"
)

// DefaultHelperAllowance is one day's helper rate in BRL.
var DefaultHelperAllowance = decimal.NewFromInt(80)

// Options holds the policy constants used while reading blocks.
type Options struct {
	// HelperAllowance is set on records whose block carries the helper
	// line item code.
	HelperAllowance decimal.Decimal
}

// DefaultOptions returns the standard policy.
func DefaultOptions() Options {
	return Options{HelperAllowance: DefaultHelperAllowance}
}

// Result is everything read from one document.
type Result struct {
	Records []manifest.Record `json:"records"`
	Plate   string            `json:"plate"`
}

// ParseDocument segments the page texts and reads one unpriced record per
// manifest block. It performs no I/O and never fails: fields that cannot be
// read keep their defaults.
func ParseDocument(pages []string, opts Options) Result {
	text := document.JoinPages(pages)
	blocks := chunker.Split(text)

	records := make([]manifest.Record, 0, len(blocks))
	for _, b := range blocks {
		records = append(records, Block(b, opts))
	}
	return Result{
		Records: records,
		Plate:   Plate(text),
	}
}

// Block reads a single manifest block into an unpriced record.
func Block(b document.Block, opts Options) manifest.Record {
	rec := manifest.Record{
		ID:              manifest.NewID(),
		Date:            b.Date,
		ManifestNumber:  b.ManifestNumber,
		ReturnSurcharge: decimal.Zero,
	}
	for _, rule := range fieldRules {
		rule.apply(b.Text, &rec, opts)
	}
	return rec
}
