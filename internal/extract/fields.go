package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/freteiro/internal/manifest"
	"github.com/dgallion1/freteiro/internal/tariff"
	"github.com/shopspring/decimal"
)

var (
	// routePattern stops at 3+ spaces, a label that may follow on the same
	// line, or end of text.
	routePattern = regexp.MustCompile(`(?i)Rota\s+([A-ZÁÀÂÃÉÈÊÍÏÓÔÕÖÚÇ\s']+?)(?:\s{3,}|Dt\.Saida|KM|Hr\.|$)`)

	odometerStartPattern = regexp.MustCompile(`(?i)KM\s+Inicial\s+(\d+)`)
	odometerEndPattern   = regexp.MustCompile(`(?i)KM\s+Final\s+(\d+)`)

	// allowancePattern matches the helper line item: 2003, 2.003, 2. 003, 2 003.
	allowancePattern = regexp.MustCompile(`2(?:\.\s?|\s)?003`)

	platePattern = regexp.MustCompile(`(?i)Veiculo\s+([A-Z0-9-]{7,8})`)
)

// fieldRule reads one field from a block's text into rec. Rules are
// independent; none reads what another wrote.
type fieldRule struct {
	label string
	apply func(text string, rec *manifest.Record, opts Options)
}

// fieldRules is the label vocabulary. New labels get a new entry here.
var fieldRules = []fieldRule{
	{label: "Rota", apply: readRoute},
	{label: "KM Inicial", apply: func(text string, rec *manifest.Record, _ Options) {
		rec.OdometerStart = readInt(odometerStartPattern, text)
	}},
	{label: "KM Final", apply: func(text string, rec *manifest.Record, _ Options) {
		rec.OdometerEnd = readInt(odometerEndPattern, text)
	}},
	{label: "2.003", apply: readAllowance},
}

func readRoute(text string, rec *manifest.Record, _ Options) {
	rec.Region = tariff.Unresolved
	m := routePattern.FindStringSubmatch(text)
	if m == nil {
		return
	}
	rec.Destination = strings.TrimSpace(m[1])
	rec.Region = tariff.ResolveRegion(m[1])
}

// readInt returns nil when the label is missing or the digits overflow int.
func readInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func readAllowance(text string, rec *manifest.Record, opts Options) {
	if allowancePattern.MatchString(text) {
		rec.HelperAllowance = opts.HelperAllowance
		return
	}
	rec.HelperAllowance = decimal.Zero
}

// Plate returns the first vehicle plate in the text, uppercased, or "".
func Plate(text string) string {
	m := platePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
