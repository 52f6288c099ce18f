package pricing

import (
	"github.com/dgallion1/freteiro/internal/manifest"
	"github.com/dgallion1/freteiro/internal/tariff"
	"github.com/shopspring/decimal"
)

// Price returns rec with Distance, FreightValue and TotalValue recomputed
// from its inputs and the vehicle profile. Derived fields already on rec are
// ignored, so Price is idempotent.
func Price(rec manifest.Record, profile tariff.Profile) manifest.Record {
	if rec.Region == "" {
		rec.Region = tariff.Unresolved
	}

	rec.Distance = 0
	if rec.OdometerStart != nil && rec.OdometerEnd != nil {
		// May be negative; flagged for review elsewhere, never clamped.
		rec.Distance = *rec.OdometerEnd - *rec.OdometerStart
	}

	rec.FreightValue = tariff.Lookup(rec.Region, profile)
	rec.TotalValue = rec.FreightValue.Add(rec.ReturnSurcharge).Add(rec.HelperAllowance)
	return rec
}

// PriceAll prices every record with the same profile.
func PriceAll(records []manifest.Record, profile tariff.Profile) []manifest.Record {
	out := make([]manifest.Record, len(records))
	for i, rec := range records {
		out[i] = Price(rec, profile)
	}
	return out
}

// Totals aggregates a report's money columns.
type Totals struct {
	HelperAllowance decimal.Decimal `json:"helper_allowance"`
	Freight         decimal.Decimal `json:"freight"`
	ReturnSurcharge decimal.Decimal `json:"return_surcharge"`
	Grand           decimal.Decimal `json:"grand"`
	Distance        int             `json:"distance"`
}

// Sum totals already priced records.
func Sum(records []manifest.Record) Totals {
	t := Totals{
		HelperAllowance: decimal.Zero,
		Freight:         decimal.Zero,
		ReturnSurcharge: decimal.Zero,
		Grand:           decimal.Zero,
	}
	for _, r := range records {
		t.HelperAllowance = t.HelperAllowance.Add(r.HelperAllowance)
		t.Freight = t.Freight.Add(r.FreightValue)
		t.ReturnSurcharge = t.ReturnSurcharge.Add(r.ReturnSurcharge)
		t.Grand = t.Grand.Add(r.TotalValue)
		t.Distance += r.Distance
	}
	return t
}
