package manifest

import (
	"github.com/dgallion1/freteiro/internal/tariff"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is one trip of a report. Distance, FreightValue and TotalValue are
// derived; only pricing.Price writes them.
type Record struct {
	ID             string        `json:"id"`
	Date           string        `json:"date"`
	ManifestNumber string        `json:"manifest_number"`
	Region         tariff.Region `json:"region"`

	// Destination is the route text as read from the source, kept for review
	// when Region is Unresolved.
	Destination string `json:"destination,omitempty"`

	// Nil means the reading was not present in the source. Zero is a reading.
	OdometerStart *int `json:"odometer_start"`
	OdometerEnd   *int `json:"odometer_end"`

	HelperAllowance decimal.Decimal `json:"helper_allowance"`
	ReturnSurcharge decimal.Decimal `json:"return_surcharge"`

	Distance     int             `json:"distance"`
	FreightValue decimal.Decimal `json:"freight_value"`
	TotalValue   decimal.Decimal `json:"total_value"`
}

// Header is the report-wide context shared by all records.
type Header struct {
	Provider string         `json:"provider"`
	Profile  tariff.Profile `json:"profile"`
	Plate    string         `json:"plate"`
	Date     string         `json:"date"`
}

// Clone returns a copy that shares no odometer pointers with r.
func (r Record) Clone() Record {
	if r.OdometerStart != nil {
		r.OdometerStart = Int(*r.OdometerStart)
	}
	if r.OdometerEnd != nil {
		r.OdometerEnd = Int(*r.OdometerEnd)
	}
	return r
}

// NewID returns an identifier unique within a session.
func NewID() string {
	return uuid.NewString()
}

// Int returns a pointer to v, for optional odometer readings.
func Int(v int) *int {
	return &v
}
