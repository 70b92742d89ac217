package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"pricefx/internal/domain"
)

func TestExponent(t *testing.T) {
	assert.Equal(t, int32(0), Exponent(domain.Currency("XOF")))
	assert.Equal(t, int32(0), Exponent(domain.Currency("JPY")))
	assert.Equal(t, int32(0), Exponent(domain.Currency("xof")))
	assert.Equal(t, int32(2), Exponent(domain.Currency("EUR")))
	assert.Equal(t, int32(2), Exponent(domain.Currency("USD")))
	assert.Equal(t, int32(2), Exponent(domain.Currency("ZZZ")))
}

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency domain.Currency
		want     string
	}{
		{"zero-decimal rounds up", "333.6", "XOF", "334"},
		{"zero-decimal rounds down", "333.4", "XOF", "333"},
		{"zero-decimal half rounds up", "333.5", "XOF", "334"},
		{"two-decimal rounds up", "12.345", "EUR", "12.35"},
		{"two-decimal exact", "12.34", "EUR", "12.34"},
		{"whole amount untouched", "1000", "EUR", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundAmount(decimal.RequireFromString(tt.amount), tt.currency)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", got, tt.want)
		})
	}
}

func TestRoundRate(t *testing.T) {
	rate := decimal.RequireFromString("655.123456789")
	assert.Equal(t, "655.12345679", RoundRate(rate).String())

	exact := decimal.RequireFromString("655.5")
	assert.True(t, RoundRate(exact).Equal(exact))
}
