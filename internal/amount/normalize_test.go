package amount_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbot/internal/amount"
	"ledgerbot/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNormalize_Exclusive(t *testing.T) {
	got, err := amount.Normalize("5000", amount.DefaultVATRate)

	require.NoError(t, err)
	assert.True(t, dec("5000").Equal(got.Excl), "excl = %s", got.Excl)
	assert.True(t, dec("6000").Equal(got.Incl), "incl = %s", got.Incl)
	assert.True(t, dec("1000").Equal(got.Tax), "tax = %s", got.Tax)
}

func TestNormalize_Inclusive(t *testing.T) {
	got, err := amount.Normalize("5000 с НДС", amount.DefaultVATRate)

	require.NoError(t, err)
	assert.True(t, dec("4166.67").Equal(got.Excl), "excl = %s", got.Excl)
	assert.True(t, dec("5000").Equal(got.Incl), "incl = %s", got.Incl)
	assert.True(t, dec("833.33").Equal(got.Tax), "tax = %s", got.Tax)
}

func TestNormalize_InclusiveMarkerVariants(t *testing.T) {
	for _, text := range []string{"1200 С НДС", "1200 сНДС", "итого 1200 с  ндс", "с ндс 1200"} {
		got, err := amount.Normalize(text, amount.DefaultVATRate)
		require.NoError(t, err, text)
		assert.True(t, dec("1000").Equal(got.Excl), "%q excl = %s", text, got.Excl)
		assert.True(t, dec("1200").Equal(got.Incl), "%q incl = %s", text, got.Incl)
	}
}

func TestNormalize_TakesFirstNumber(t *testing.T) {
	got, err := amount.Normalize("оплата 150.5 за 3 дня", amount.DefaultVATRate)

	require.NoError(t, err)
	assert.True(t, dec("150.5").Equal(got.Excl))
	assert.True(t, dec("180.6").Equal(got.Incl))
}

func TestNormalize_CommaDecimal(t *testing.T) {
	got, err := amount.Normalize("99,99", amount.DefaultVATRate)

	require.NoError(t, err)
	assert.True(t, dec("99.99").Equal(got.Excl))
	assert.True(t, dec("119.99").Equal(got.Incl))
}

func TestNormalize_NoNumber(t *testing.T) {
	for _, text := range []string{"", "пять тысяч", "с НДС", "-"} {
		_, err := amount.Normalize(text, amount.DefaultVATRate)
		assert.ErrorIs(t, err, amount.ErrNoAmount, text)
		assert.True(t, errors.Is(err, domain.ErrValidation), text)
	}
}

func TestNormalize_CustomRate(t *testing.T) {
	got, err := amount.Normalize("100", dec("0.1"))

	require.NoError(t, err)
	assert.True(t, dec("110").Equal(got.Incl))
	assert.True(t, dec("10").Equal(got.Tax))
}

func TestNormalize_SumHolds(t *testing.T) {
	cent := dec("0.01")
	for _, v := range []string{"0.01", "1", "7.77", "333.33", "1234.56", "99999.99", "1000000"} {
		for _, suffix := range []string{"", " с ндс"} {
			got, err := amount.Normalize(v+suffix, amount.DefaultVATRate)
			require.NoError(t, err)

			assert.True(t, got.Excl.Add(got.Tax).Sub(got.Incl).Abs().LessThanOrEqual(cent),
				"%s%s: %s + %s != %s", v, suffix, got.Excl, got.Tax, got.Incl)

			expectedTax := got.Excl.Mul(amount.DefaultVATRate).Round(2)
			assert.True(t, got.Tax.Sub(expectedTax).Abs().LessThanOrEqual(cent),
				"%s%s: tax %s vs %s", v, suffix, got.Tax, expectedTax)
		}
	}
}

func TestFromInclusive_RoundsHalfUp(t *testing.T) {
	// 0.03 / 1.2 = 0.025
	got := amount.FromInclusive(dec("0.03"), amount.DefaultVATRate)

	assert.True(t, dec("0.03").Equal(got.Excl), "excl = %s", got.Excl)
	assert.True(t, dec("0").Equal(got.Tax), "tax = %s", got.Tax)
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"zero", "0", 0},
		{"whole", "12", 12},
		{"trailing zeros", "12.00", 12},
		{"max", "2147483647", amount.MaxQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := amount.Quantity(dec(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuantity_Rejects(t *testing.T) {
	for _, in := range []string{"1.5", "-3", "2147483648", "99999999999999999999"} {
		t.Run(in, func(t *testing.T) {
			_, err := amount.Quantity(dec(in))
			assert.ErrorIs(t, err, amount.ErrInvalidQuantity)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}
