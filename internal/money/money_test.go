package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"57500", 57500},
		{"33333.3333333333", 33333},
		{"33333.5", 33334},
		{"0.49", 0},
		{"-12.5", -13},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Round(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestWithin(t *testing.T) {
	a := decimal.RequireFromString("99999.9999999999")
	b := decimal.NewFromInt(100000)
	assert.True(t, Within(a, b, Unit))
	assert.False(t, Within(decimal.NewFromInt(98), b, Unit))
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(FromUnits(10), FromUnits(-4), FromUnits(4)).Equal(FromUnits(10)))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(" usd "))
	assert.Equal(t, DefaultCurrency, NormalizeCurrency(""))
	assert.Equal(t, DefaultCurrency, NormalizeCurrency("NOPE"))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1.00", Format(100, "USD"))
	assert.Equal(t, "$12.95", FormatDecimal(decimal.RequireFromString("1294.6"), "USD"))
	assert.Equal(t, "Rp57.500", Format(57500, "IDR"))
	assert.Equal(t, "Rp1.234.567", Format(1234567, DefaultCurrency))
	assert.Equal(t, "Rp0", Format(0, "idr"))
}

func TestFraction(t *testing.T) {
	assert.Equal(t, int32(0), Fraction("IDR"))
	assert.Equal(t, int32(2), Fraction("USD"))
	assert.Equal(t, int32(0), Fraction("JPY"))
	assert.Equal(t, int32(0), Fraction(""))
}
