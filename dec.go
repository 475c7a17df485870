package keepbook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// decPrecision is the number of significant digits carried through every
// computation. Rounding below that precision happens only when a value is
// formatted, never mid-computation.
const decPrecision = 29

func init() {
	decimal.DivisionPrecision = decPrecision
}

// ParseDecimal parses an exact decimal from its canonical string form.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

// DecString renders d in canonical form: no exponent, no trailing
// fractional zeros. DecString round-trips through ParseDecimal.
func DecString(d decimal.Decimal) string { return d.String() }

// DecStringRounded renders d rounded half-up to the given number of
// decimal places, keeping trailing zeros ("50" at 2 places is "50.00").
func DecStringRounded(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
