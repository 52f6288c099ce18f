package report

import (
	"errors"
	"sync"
	"time"

	"github.com/dgallion1/freteiro/internal/extract"
	"github.com/dgallion1/freteiro/internal/manifest"
	"github.com/dgallion1/freteiro/internal/pricing"
	"github.com/dgallion1/freteiro/internal/tariff"
	"github.com/shopspring/decimal"
)

// ErrRecordNotFound is returned when an id does not belong to the report.
var ErrRecordNotFound = errors.New("record not found")

// DateLayout is the display format for report and record dates.
const DateLayout = "02/01/2006"

// Report is the editable record list of one session. Every mutation
// reprices the records it touches; derived fields are never set directly.
type Report struct {
	mu      sync.Mutex
	header  manifest.Header
	records []manifest.Record

	now func() time.Time
}

// New starts an empty report. An invalid profile falls back to VUC and an
// empty date to today.
func New(header manifest.Header) *Report {
	r := &Report{now: time.Now}
	if !header.Profile.Valid() {
		header.Profile = tariff.ProfileVUC
	}
	if header.Date == "" {
		header.Date = r.now().Format(DateLayout)
	}
	r.header = header
	return r
}

// Load replaces the record list with a parse result and fills the plate.
func (r *Report) Load(res extract.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header.Plate = res.Plate
	r.records = make([]manifest.Record, 0, len(res.Records))
	for _, rec := range res.Records {
		r.records = append(r.records, pricing.Price(rec.Clone(), r.header.Profile))
	}
}

// Add appends a blank record dated today and returns it.
func (r *Report) Add() manifest.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := pricing.Price(manifest.Record{
		ID:              manifest.NewID(),
		Date:            r.now().Format(DateLayout),
		Region:          tariff.Unresolved,
		HelperAllowance: decimal.Zero,
		ReturnSurcharge: decimal.Zero,
	}, r.header.Profile)
	r.records = append(r.records, rec)
	return rec.Clone()
}

// Update applies edit to the record with the given id and reprices it.
// The id cannot be changed by edit.
func (r *Report) Update(id string, edit func(*manifest.Record)) (manifest.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return manifest.Record{}, ErrRecordNotFound
	}
	rec := r.records[i].Clone()
	edit(&rec)
	rec.ID = id
	r.records[i] = pricing.Price(rec, r.header.Profile)
	return r.records[i].Clone(), nil
}

// Remove deletes the record with the given id.
func (r *Report) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ErrRecordNotFound
	}
	r.records = append(r.records[:i], r.records[i+1:]...)
	return nil
}

// SetProfile changes the report's vehicle profile and reprices every record.
func (r *Report) SetProfile(p tariff.Profile) error {
	p, err := tariff.ParseProfile(string(p))
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header.Profile = p
	r.records = pricing.PriceAll(r.records, p)
	return nil
}

// SetHeader updates provider and date. Profile and plate have their own paths.
func (r *Report) SetHeader(provider, date string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.header.Provider = provider
	r.header.Date = date
}

// Header returns the report header.
func (r *Report) Header() manifest.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.header
}

// Records returns a copy of the record list in order.
func (r *Report) Records() []manifest.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]manifest.Record, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Clone()
	}
	return out
}

// Totals sums the priced records.
func (r *Report) Totals() pricing.Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	return pricing.Sum(r.records)
}

// Snapshot is a read-only, JSON-safe copy of the report.
type Snapshot struct {
	Header  manifest.Header   `json:"header"`
	Records []manifest.Record `json:"records"`
	Totals  pricing.Totals    `json:"totals"`
}

// Snapshot returns header, records and totals taken under one lock.
func (r *Report) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]manifest.Record, len(r.records))
	for i, rec := range r.records {
		records[i] = rec.Clone()
	}
	return Snapshot{
		Header:  r.header,
		Records: records,
		Totals:  pricing.Sum(records),
	}
}

func (r *Report) indexOf(id string) int {
	for i := range r.records {
		if r.records[i].ID == id {
			return i
		}
	}
	return -1
}
