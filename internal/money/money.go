// Package money holds the arithmetic and display helpers shared by the debt engine.
//
// Stored amounts are int64 values in the smallest unit a currency is paid in: cents for USD, whole
// rupiah for IDR. Everything computed from them stays an exact decimal until it leaves the core, where
// Round is applied exactly once.
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = gomoney.IDR

// ISO 4217 gives IDR two decimals, but sen are not in circulation and prices are written in whole
// rupiah, e.g. Rp57.500.
func init() {
	gomoney.AddCurrency(gomoney.IDR, "Rp", "$1", ",", ".", 0)
}

// Unit is one minor currency unit.
var Unit = decimal.NewFromInt(1)

// FromUnits converts a stored amount into a decimal.
func FromUnits(units int64) decimal.Decimal {
	return decimal.NewFromInt(units)
}

// Round converts an exact amount into whole minor units, rounding half away from zero.
func Round(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Within reports whether a and b differ by at most tolerance.
func Within(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// Sum adds up the given amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// NormalizeCurrency returns an upper-case currency code known to go-money, or DefaultCurrency.
func NormalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || gomoney.GetCurrency(code) == nil {
		return DefaultCurrency
	}
	return code
}

// Fraction is the number of decimals between a currency's printed unit and its stored unit.
func Fraction(currency string) int32 {
	return int32(gomoney.GetCurrency(NormalizeCurrency(currency)).Fraction)
}

// Format renders stored units with the currency's symbol and separators, e.g. "$1.00".
func Format(units int64, currency string) string {
	return gomoney.New(units, NormalizeCurrency(currency)).Display()
}

// FormatDecimal rounds an exact amount and renders it.
func FormatDecimal(d decimal.Decimal, currency string) string {
	return Format(Round(d), currency)
}
