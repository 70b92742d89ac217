package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestComputeFeeModes(t *testing.T) {
	tests := []struct {
		name    string
		rule    domain.PricingRule
		amount  string
		from    domain.Currency
		wantFee string
	}{
		{
			name:    "none",
			rule:    domain.PricingRule{FeeMode: domain.FeeModeNone},
			amount:  "1000",
			from:    "EUR",
			wantFee: "0",
		},
		{
			name:    "fixed ignores amount",
			rule:    domain.PricingRule{FeeMode: domain.FeeModeFixed, FeeFixed: dec("5")},
			amount:  "999999",
			from:    "EUR",
			wantFee: "5",
		},
		{
			name:    "percent",
			rule:    domain.PricingRule{FeeMode: domain.FeeModePercent, FeePercent: dec("2")},
			amount:  "1000",
			from:    "EUR",
			wantFee: "20",
		},
		{
			name: "mixed sums both",
			rule: domain.PricingRule{
				FeeMode:    domain.FeeModeMixed,
				FeePercent: dec("1"),
				FeeFixed:   dec("2.5"),
			},
			amount:  "1000",
			from:    "EUR",
			wantFee: "12.5",
		},
		{
			name: "percent raised to min fee",
			rule: domain.PricingRule{
				FeeMode:    domain.FeeModePercent,
				FeePercent: dec("1"),
				MinFee:     decPtr("50"),
			},
			amount:  "100",
			from:    "EUR",
			wantFee: "50",
		},
		{
			name: "percent capped at max fee",
			rule: domain.PricingRule{
				FeeMode:    domain.FeeModePercent,
				FeePercent: dec("10"),
				MaxFee:     decPtr("25"),
			},
			amount:  "1000",
			from:    "EUR",
			wantFee: "25",
		},
		{
			name:    "zero-decimal currency rounding",
			rule:    domain.PricingRule{FeeMode: domain.FeeModeFixed, FeeFixed: dec("333.6")},
			amount:  "10000",
			from:    "XOF",
			wantFee: "334",
		},
		{
			name:    "two-decimal currency rounding",
			rule:    domain.PricingRule{FeeMode: domain.FeeModeFixed, FeeFixed: dec("12.345")},
			amount:  "100",
			from:    "EUR",
			wantFee: "12.35",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown, err := ComputeFee(dec(tt.amount), &tt.rule, tt.from)
			require.NoError(t, err)
			assert.True(t, breakdown.Fee.Equal(dec(tt.wantFee)),
				"got fee %s want %s", breakdown.Fee, tt.wantFee)
		})
	}
}

func TestComputeFeeUnknownMode(t *testing.T) {
	rule := domain.PricingRule{FeeMode: "TIERED"}
	_, err := ComputeFee(dec("100"), &rule, "EUR")
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidRuleConfig, errors.KindOf(err))
}

func TestComputeFeeBreakdownComponents(t *testing.T) {
	rule := domain.PricingRule{
		FeeMode:    domain.FeeModeMixed,
		FeePercent: dec("2"),
		FeeFixed:   dec("1"),
		MaxFee:     decPtr("15"),
	}

	breakdown, err := ComputeFee(dec("1000"), &rule, "EUR")
	require.NoError(t, err)

	assert.True(t, breakdown.PercentFee.Equal(dec("20")))
	assert.True(t, breakdown.FixedFee.Equal(dec("1")))
	assert.True(t, breakdown.RawFee.Equal(dec("21")))
	assert.True(t, breakdown.ClampedFee.Equal(dec("15")))
	assert.True(t, breakdown.Fee.Equal(dec("15")))
}

func TestNetFrom(t *testing.T) {
	gross, net, err := NetFrom(dec("1000"), dec("20"), "EUR")
	require.NoError(t, err)
	assert.True(t, gross.Equal(dec("1000")))
	assert.True(t, net.Equal(dec("980")))
}

func TestNetFromFeeExceedsAmount(t *testing.T) {
	_, _, err := NetFrom(dec("10"), dec("50"), "EUR")
	require.Error(t, err)
	assert.Equal(t, errors.KindFeeExceedsAmount, errors.KindOf(err))
}

func TestNetFromZeroIsAllowed(t *testing.T) {
	_, net, err := NetFrom(dec("50"), dec("50"), "EUR")
	require.NoError(t, err)
	assert.True(t, net.IsZero())
}
