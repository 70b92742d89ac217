package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

func baseFxRule() domain.FxRule {
	return domain.FxRule{
		ID:           uuid.New(),
		FromCurrency: "EUR",
		ToCurrency:   "XOF",
		Mode:         domain.FxAdjustPassThrough,
		Active:       true,
		UpdatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestResolveFxRuleWildcards(t *testing.T) {
	rule := baseFxRule()
	req := transferRequest("100")

	// Empty txType/provider/country match any request.
	got := ResolveFxRule(req, []domain.FxRule{rule})
	require.NotNil(t, got)
	assert.Equal(t, rule.ID, got.ID)
}

func TestResolveFxRuleScopedFilters(t *testing.T) {
	rule := baseFxRule()
	rule.TxType = domain.TxDeposit
	req := transferRequest("100")

	assert.Nil(t, ResolveFxRule(req, []domain.FxRule{rule}))

	rule = baseFxRule()
	rule.Provider = "mtn"
	assert.Nil(t, ResolveFxRule(req, []domain.FxRule{rule}))
	req.Operator = "MTN"
	assert.NotNil(t, ResolveFxRule(req, []domain.FxRule{rule}))

	rule = baseFxRule()
	rule.Country = "Senegal"
	req = transferRequest("100")
	req.Country = "SN"
	assert.NotNil(t, ResolveFxRule(req, []domain.FxRule{rule}))
	req.Country = "CI"
	assert.Nil(t, ResolveFxRule(req, []domain.FxRule{rule}))
}

func TestResolveFxRuleExactPairRequired(t *testing.T) {
	rule := baseFxRule()
	req := transferRequest("100")
	req.ToCurrency = "GHS"

	assert.Nil(t, ResolveFxRule(req, []domain.FxRule{rule}))
}

func TestResolveFxRuleAmountRange(t *testing.T) {
	rule := baseFxRule()
	rule.MinAmount = decPtr("100")
	rule.MaxAmount = decPtr("500")

	assert.NotNil(t, ResolveFxRule(transferRequest("100"), []domain.FxRule{rule}))
	assert.NotNil(t, ResolveFxRule(transferRequest("500"), []domain.FxRule{rule}))
	assert.Nil(t, ResolveFxRule(transferRequest("99.99"), []domain.FxRule{rule}))
	assert.Nil(t, ResolveFxRule(transferRequest("500.01"), []domain.FxRule{rule}))
}

func TestResolveFxRuleTieBreak(t *testing.T) {
	low := baseFxRule()
	low.Priority = 1
	high := baseFxRule()
	high.Priority = 5

	got := ResolveFxRule(transferRequest("100"), []domain.FxRule{low, high})
	require.NotNil(t, got)
	assert.Equal(t, high.ID, got.ID)

	older := baseFxRule()
	newer := baseFxRule()
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)

	got = ResolveFxRule(transferRequest("100"), []domain.FxRule{older, newer})
	require.NotNil(t, got)
	assert.Equal(t, newer.ID, got.ID)
}

func TestApplyFxAdjustmentPassThrough(t *testing.T) {
	rule := baseFxRule()

	adjusted, applied, err := ApplyFxAdjustment(dec("655.957"), &rule)
	require.NoError(t, err)
	assert.True(t, adjusted.Equal(dec("655.957")))
	require.NotNil(t, applied)
	assert.Equal(t, rule.ID, applied.RuleID)
	assert.Equal(t, domain.FxAdjustPassThrough, applied.Mode)
}

func TestApplyFxAdjustmentOverride(t *testing.T) {
	rule := baseFxRule()
	rule.Mode = domain.FxAdjustOverride
	rule.OverrideRate = decPtr("600")

	adjusted, _, err := ApplyFxAdjustment(dec("655"), &rule)
	require.NoError(t, err)
	assert.True(t, adjusted.Equal(dec("600")))

	rule.OverrideRate = nil
	_, _, err = ApplyFxAdjustment(dec("655"), &rule)
	assert.Equal(t, errors.KindInvalidRuleConfig, errors.KindOf(err))
}

func TestApplyFxAdjustmentDeltaPercent(t *testing.T) {
	rule := baseFxRule()
	rule.Mode = domain.FxAdjustDeltaPercent
	rule.Percent = dec("2")

	adjusted, _, err := ApplyFxAdjustment(dec("655"), &rule)
	require.NoError(t, err)
	assert.True(t, adjusted.Equal(dec("668.1")))

	// Negative percent lowers the rate.
	rule.Percent = dec("-2")
	adjusted, _, err = ApplyFxAdjustment(dec("655"), &rule)
	require.NoError(t, err)
	assert.True(t, adjusted.Equal(dec("641.9")))
}

func TestApplyFxAdjustmentDeltaAbs(t *testing.T) {
	rule := baseFxRule()
	rule.Mode = domain.FxAdjustDeltaAbs
	rule.DeltaAbs = dec("-5")

	adjusted, _, err := ApplyFxAdjustment(dec("655"), &rule)
	require.NoError(t, err)
	assert.True(t, adjusted.Equal(dec("650")))
}

func TestApplyFxAdjustmentRoundsToRatePrecision(t *testing.T) {
	rule := baseFxRule()
	rule.Mode = domain.FxAdjustDeltaPercent
	rule.Percent = dec("0.333333333")

	adjusted, _, err := ApplyFxAdjustment(dec("1"), &rule)
	require.NoError(t, err)
	assert.Equal(t, "1.00333333", adjusted.String())
}

func TestApplyFxAdjustmentInvalidResult(t *testing.T) {
	rule := baseFxRule()
	rule.Mode = domain.FxAdjustDeltaAbs
	rule.DeltaAbs = dec("-700")

	_, _, err := ApplyFxAdjustment(dec("655"), &rule)
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidAdjustedRate, errors.KindOf(err))

	rule.DeltaAbs = dec("-655")
	_, _, err = ApplyFxAdjustment(dec("655"), &rule)
	assert.Equal(t, errors.KindInvalidAdjustedRate, errors.KindOf(err))
}
