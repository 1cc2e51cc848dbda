// Package amount turns free-form money input into VAT-split amounts.
package amount

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerbot/internal/domain"
)

// DefaultVATRate is the tax rate used when none is configured.
var DefaultVATRate = decimal.RequireFromString("0.20")

// ErrNoAmount is returned when the text carries no number.
var ErrNoAmount = fmt.Errorf("%w: no amount in text", domain.ErrValidation)

// MaxQuantity bounds an item count.
const MaxQuantity = math.MaxInt32

// ErrInvalidQuantity is returned for counts that are fractional, negative or too large.
var ErrInvalidQuantity = fmt.Errorf("%w: quantity must be a whole number from 0 to %d", domain.ErrValidation, MaxQuantity)

var (
	numberRe    = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	inclusiveRe = regexp.MustCompile(`(?i)с\s*ндс`)
)

// Normalize reads the first number in text and splits it into base, tax and total.
// A "с НДС" marker means the number already includes tax.
func Normalize(text string, rate decimal.Decimal) (domain.Amounts, error) {
	value, err := ParseNumber(text)
	if err != nil {
		return domain.Amounts{}, err
	}
	if HasInclusiveMarker(text) {
		return FromInclusive(value, rate), nil
	}
	return FromExclusive(value, rate), nil
}

// ParseNumber returns the first decimal number in text. A comma is read as the
// decimal separator.
func ParseNumber(text string) (decimal.Decimal, error) {
	token := numberRe.FindString(text)
	if token == "" {
		return decimal.Zero, ErrNoAmount
	}
	v, err := decimal.NewFromString(strings.Replace(token, ",", ".", 1))
	if err != nil {
		return decimal.Zero, errors.Join(ErrNoAmount, err)
	}
	return v, nil
}

// HasInclusiveMarker reports whether text says the amount includes VAT.
func HasInclusiveMarker(text string) bool {
	return inclusiveRe.MatchString(text)
}

// FromExclusive derives the total and tax from an amount without VAT.
func FromExclusive(excl, rate decimal.Decimal) domain.Amounts {
	excl = excl.Round(2)
	incl := excl.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
	return domain.Amounts{
		Excl: excl,
		Incl: incl,
		Tax:  incl.Sub(excl).Round(2),
	}
}

// FromInclusive derives the base and tax from an amount that includes VAT.
func FromInclusive(incl, rate decimal.Decimal) domain.Amounts {
	incl = incl.Round(2)
	excl := incl.Div(decimal.NewFromInt(1).Add(rate)).Round(2)
	return domain.Amounts{
		Excl: excl,
		Incl: incl,
		Tax:  incl.Sub(excl).Round(2),
	}
}

// Quantity converts a parsed number into an item count.
func Quantity(v decimal.Decimal) (int, error) {
	if !v.IsInteger() || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(MaxQuantity)) {
		return 0, ErrInvalidQuantity
	}
	return int(v.IntPart()), nil
}
