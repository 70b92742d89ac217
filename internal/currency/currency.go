// Package currency provides per-currency precision rules and rounding.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
)

// RateExponent is the fixed precision for exchange rates.
const RateExponent = 8

// zeroDecimal lists ISO 4217 currencies with no minor unit.
var zeroDecimal = map[string]struct{}{
	"BIF": {},
	"CLP": {},
	"DJF": {},
	"GNF": {},
	"ISK": {},
	"JPY": {},
	"KMF": {},
	"KRW": {},
	"PYG": {},
	"RWF": {},
	"UGX": {},
	"UYI": {},
	"VND": {},
	"VUV": {},
	"XAF": {},
	"XOF": {},
	"XPF": {},
}

// Exponent returns the number of decimal places for amounts in the
// given currency: 0 for zero-decimal currencies, 2 otherwise.
func Exponent(code domain.Currency) int32 {
	if _, ok := zeroDecimal[strings.ToUpper(string(code))]; ok {
		return 0
	}
	return 2
}

// RoundAmount rounds a monetary amount to the currency's native
// precision, half away from zero.
func RoundAmount(d decimal.Decimal, code domain.Currency) decimal.Decimal {
	return d.Round(Exponent(code))
}

// RoundRate rounds an exchange rate to the fixed rate precision.
func RoundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(RateExponent)
}
