package tariff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Profile is the vehicle size class, one axis of the freight table.
type Profile string

const (
	ProfileVUC   Profile = "VUC"   // small
	ProfileTOCO  Profile = "TOCO"  // medium
	ProfileTRUCK Profile = "TRUCK" // large
)

// Region is a pricing zone, the other axis of the freight table.
type Region string

const (
	Region1    Region = "REGIÃO 1"
	Region2    Region = "REGIÃO 2"
	Region3    Region = "REGIÃO 3"
	Region4    Region = "REGIÃO 4"
	Region5    Region = "REGIÃO 5"
	Region6    Region = "REGIÃO 6"
	Unresolved Region = "REGIÃO NÃO IDENTIFICADA"
)

// ErrUnknownProfile is returned by ParseProfile for names outside the closed set.
var ErrUnknownProfile = errors.New("unknown vehicle profile")

var profiles = []Profile{ProfileVUC, ProfileTOCO, ProfileTRUCK}

var regions = []Region{Region1, Region2, Region3, Region4, Region5, Region6, Unresolved}

// Profiles returns every vehicle profile in display order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// Regions returns every region in display order, Unresolved last.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// ParseProfile accepts a profile name in any case.
func ParseProfile(s string) (Profile, error) {
	p := Profile(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range profiles {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProfile, s)
}

// Valid reports whether p is one of the known profiles.
func (p Profile) Valid() bool {
	for _, known := range profiles {
		if p == known {
			return true
		}
	}
	return false
}

// Valid reports whether r is one of the known regions, Unresolved included.
func (r Region) Valid() bool {
	for _, known := range regions {
		if r == known {
			return true
		}
	}
	return false
}

type rates map[Profile]decimal.Decimal

func row(vuc, toco, truck string) rates {
	return rates{
		ProfileVUC:   decimal.RequireFromString(vuc),
		ProfileTOCO:  decimal.RequireFromString(toco),
		ProfileTRUCK: decimal.RequireFromString(truck),
	}
}

// freightTable is the fixed BRL rate per trip. Unresolved is absent on
// purpose: Lookup prices it to zero.
var freightTable = map[Region]rates{
	Region1: row("546.00", "597.48", "686.40"),
	Region2: row("580.32", "647.40", "744.12"),
	Region3: row("656.76", "755.04", "870.48"),
	Region4: row("639.60", "730.08", "870.48"),
	Region5: row("700.44", "819.00", "945.36"),
	Region6: row("773.76", "921.96", "1065.48"),
}

// Lookup returns the freight for a region and profile. It never fails:
// Unresolved, or any pair outside the table, prices to zero.
func Lookup(region Region, profile Profile) decimal.Decimal {
	r, ok := freightTable[region]
	if !ok {
		return decimal.Zero
	}
	v, ok := r[profile]
	if !ok {
		return decimal.Zero
	}
	return v
}
