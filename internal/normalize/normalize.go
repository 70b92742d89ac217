// Package normalize maps raw request fields onto canonical values before
// any rule matching happens. All free-text handling lives here so the
// resolvers only ever compare normalized data.
package normalize

import (
	"strings"

	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

// txTypeAliases maps accepted transaction type synonyms to canonical values.
var txTypeAliases = map[string]domain.TxType{
	"transfer":   domain.TxTransfer,
	"transfert":  domain.TxTransfer,
	"send":       domain.TxTransfer,
	"deposit":    domain.TxDeposit,
	"cashin":     domain.TxDeposit,
	"cash_in":    domain.TxDeposit,
	"topup":      domain.TxDeposit,
	"top_up":     domain.TxDeposit,
	"withdraw":   domain.TxWithdraw,
	"withdrawal": domain.TxWithdraw,
	"cashout":    domain.TxWithdraw,
	"cash_out":   domain.TxWithdraw,
}

// countryAliases maps free-text country names to ISO2 codes. Values not
// found here (and not already ISO2) pass through uppercased so rule
// authors keep an escape hatch for unlisted markets.
var countryAliases = map[string]string{
	"algeria":                      "DZ",
	"benin":                        "BJ",
	"burkina":                      "BF",
	"burkina faso":                 "BF",
	"cameroon":                     "CM",
	"cameroun":                     "CM",
	"china":                        "CN",
	"comoros":                      "KM",
	"congo":                        "CG",
	"cote d'ivoire":                "CI",
	"cote divoire":                 "CI",
	"côte d'ivoire":                "CI",
	"democratic republic of congo": "CD",
	"drc":                          "CD",
	"france":                       "FR",
	"gabon":                        "GA",
	"ghana":                        "GH",
	"guinea":                       "GN",
	"guinee":                       "GN",
	"ivory coast":                  "CI",
	"kenya":                        "KE",
	"madagascar":                   "MG",
	"malawi":                       "MW",
	"mali":                         "ML",
	"maroc":                        "MA",
	"morocco":                      "MA",
	"niger":                        "NE",
	"nigeria":                      "NG",
	"rwanda":                       "RW",
	"senegal":                      "SN",
	"sénégal":                      "SN",
	"tanzania":                     "TZ",
	"togo":                         "TG",
	"tunisia":                      "TN",
	"uganda":                       "UG",
	"uk":                           "GB",
	"united kingdom":               "GB",
	"united states":                "US",
	"usa":                          "US",
}

// TxType resolves a raw transaction type to exactly one canonical value.
func TxType(raw string) (domain.TxType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", errors.E(errors.KindInvalidInput, "transaction type is required")
	}
	if t, ok := txTypeAliases[key]; ok {
		return t, nil
	}
	return "", errors.Ef(errors.KindInvalidInput, "unknown transaction type %q", raw)
}

// Country resolves free text or an ISO2 code to a normalized country token.
// Unrecognized values are passed through uppercased, not rejected.
func Country(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if iso, ok := countryAliases[strings.ToLower(trimmed)]; ok {
		return iso
	}
	return strings.ToUpper(trimmed)
}

// Request validates and normalizes every field of a raw pricing request.
func Request(txType string, amount decimal.Decimal, from, to, country, operator string) (domain.NormalizedRequest, error) {
	var req domain.NormalizedRequest

	t, err := TxType(txType)
	if err != nil {
		return req, err
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return req, errors.E(errors.KindInvalidInput, "amount must be greater than zero")
	}

	fromCode := strings.ToUpper(strings.TrimSpace(from))
	toCode := strings.ToUpper(strings.TrimSpace(to))
	if fromCode == "" || toCode == "" {
		return req, errors.E(errors.KindInvalidInput, "from and to currencies are required")
	}

	req = domain.NormalizedRequest{
		TxType:       t,
		Amount:       amount,
		FromCurrency: domain.Currency(fromCode),
		ToCurrency:   domain.Currency(toCode),
		Country:      Country(country),
		Operator:     strings.ToLower(strings.TrimSpace(operator)),
	}
	return req, nil
}
