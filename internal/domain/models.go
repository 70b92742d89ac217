// Package domain holds the core pricing engine types.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// TxType is the canonical transaction type of a pricing request.
type TxType string

const (
	TxTransfer TxType = "TRANSFER"
	TxDeposit  TxType = "DEPOSIT"
	TxWithdraw TxType = "WITHDRAW"
)

// NormalizedRequest is a pricing request after input normalization.
// Country is an ISO2 code (or uppercased free text when no alias matched)
// and Operator a lowercased token; both are optional.
type NormalizedRequest struct {
	TxType       TxType          `json:"tx_type"`
	Amount       decimal.Decimal `json:"amount"`
	FromCurrency Currency        `json:"from_currency"`
	ToCurrency   Currency        `json:"to_currency"`
	Country      string          `json:"country,omitempty"`
	Operator     string          `json:"operator,omitempty"`
}

func (r NormalizedRequest) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *NormalizedRequest) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, r)
}

// FeeMode selects how a pricing rule computes its fee.
type FeeMode string

const (
	FeeModeNone    FeeMode = "NONE"
	FeeModePercent FeeMode = "PERCENT"
	FeeModeFixed   FeeMode = "FIXED"
	FeeModeMixed   FeeMode = "MIXED"
)

// FxMode selects how a pricing rule derives its base exchange rate.
type FxMode string

const (
	FxModeMarket   FxMode = "MARKET"
	FxModeOverride FxMode = "OVERRIDE"
	FxModeMarkup   FxMode = "MARKUP"
)

// FxAdjustMode selects how an fx adjustment rule transforms the base rate.
type FxAdjustMode string

const (
	FxAdjustPassThrough  FxAdjustMode = "PASS_THROUGH"
	FxAdjustOverride     FxAdjustMode = "OVERRIDE"
	FxAdjustDeltaPercent FxAdjustMode = "DELTA_PERCENT"
	FxAdjustDeltaAbs     FxAdjustMode = "DELTA_ABS"
)

// PricingRule is a business pricing configuration record. Countries and
// Operators are scope filters; an empty list means the rule applies to all.
type PricingRule struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	TxType        TxType           `json:"tx_type" db:"tx_type"`
	FromCurrency  Currency         `json:"from_currency" db:"from_currency"`
	ToCurrency    Currency         `json:"to_currency" db:"to_currency"`
	Countries     pq.StringArray   `json:"countries" db:"countries"`
	Operators     pq.StringArray   `json:"operators" db:"operators"`
	MinAmount     decimal.Decimal  `json:"min_amount" db:"min_amount"`
	MaxAmount     *decimal.Decimal `json:"max_amount,omitempty" db:"max_amount"`
	FeeMode       FeeMode          `json:"fee_mode" db:"fee_mode"`
	FeePercent    decimal.Decimal  `json:"fee_percent" db:"fee_percent"`
	FeeFixed      decimal.Decimal  `json:"fee_fixed" db:"fee_fixed"`
	MinFee        *decimal.Decimal `json:"min_fee,omitempty" db:"min_fee"`
	MaxFee        *decimal.Decimal `json:"max_fee,omitempty" db:"max_fee"`
	FxMode        FxMode           `json:"fx_mode" db:"fx_mode"`
	OverrideRate  *decimal.Decimal `json:"override_rate,omitempty" db:"override_rate"`
	MarkupPercent decimal.Decimal  `json:"markup_percent" db:"markup_percent"`
	Priority      int              `json:"priority" db:"priority"`
	Active        bool             `json:"active" db:"active"`
	Version       int              `json:"version" db:"version"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// FxRule is an admin-administered rate adjustment record. TxType, Provider
// and Country are optional filters; the empty string matches any request.
// The currency pair is always an exact match.
type FxRule struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	TxType       TxType           `json:"tx_type,omitempty" db:"tx_type"`
	Provider     string           `json:"provider,omitempty" db:"provider"`
	Country      string           `json:"country,omitempty" db:"country"`
	FromCurrency Currency         `json:"from_currency" db:"from_currency"`
	ToCurrency   Currency         `json:"to_currency" db:"to_currency"`
	MinAmount    *decimal.Decimal `json:"min_amount,omitempty" db:"min_amount"`
	MaxAmount    *decimal.Decimal `json:"max_amount,omitempty" db:"max_amount"`
	Mode         FxAdjustMode     `json:"mode" db:"mode"`
	OverrideRate *decimal.Decimal `json:"override_rate,omitempty" db:"override_rate"`
	Percent      decimal.Decimal  `json:"percent" db:"percent"`
	DeltaAbs     decimal.Decimal  `json:"delta_abs" db:"delta_abs"`
	Priority     int              `json:"priority" db:"priority"`
	Active       bool             `json:"active" db:"active"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// FeeBreakdown records how the final fee was derived.
type FeeBreakdown struct {
	Mode       FeeMode         `json:"mode"`
	PercentFee decimal.Decimal `json:"percent_fee"`
	FixedFee   decimal.Decimal `json:"fixed_fee"`
	RawFee     decimal.Decimal `json:"raw_fee"`
	ClampedFee decimal.Decimal `json:"clamped_fee"`
	Fee        decimal.Decimal `json:"fee"`
}

// AppliedRule identifies the pricing rule a quote was computed from.
type AppliedRule struct {
	RuleID   uuid.UUID `json:"rule_id"`
	Version  int       `json:"version"`
	Priority int       `json:"priority"`
}

// AppliedFxRule identifies the fx adjustment applied on top of the base rate.
type AppliedFxRule struct {
	RuleID       uuid.UUID        `json:"rule_id"`
	Mode         FxAdjustMode     `json:"mode"`
	Percent      decimal.Decimal  `json:"percent"`
	DeltaAbs     decimal.Decimal  `json:"delta_abs"`
	OverrideRate *decimal.Decimal `json:"override_rate,omitempty"`
}

// QuoteResult is the complete pricing outcome for a request. It is
// ephemeral unless persisted as a Quote lock.
type QuoteResult struct {
	Request       NormalizedRequest `json:"request"`
	MarketRate    *decimal.Decimal  `json:"market_rate,omitempty"`
	BaseRate      decimal.Decimal   `json:"base_rate"`
	AppliedRate   decimal.Decimal   `json:"applied_rate"`
	Fee           decimal.Decimal   `json:"fee"`
	FeeBreakdown  FeeBreakdown      `json:"fee_breakdown"`
	GrossFrom     decimal.Decimal   `json:"gross_from"`
	NetFrom       decimal.Decimal   `json:"net_from"`
	NetTo         decimal.Decimal   `json:"net_to"`
	RuleApplied   AppliedRule       `json:"rule_applied"`
	FxRuleApplied *AppliedFxRule    `json:"fx_rule_applied,omitempty"`
	QuotedAt      time.Time         `json:"quoted_at"`
}

func (r QuoteResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

func (r *QuoteResult) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, r)
}

// QuoteStatus is the lifecycle state of a persisted quote lock.
type QuoteStatus string

const (
	QuoteStatusActive  QuoteStatus = "ACTIVE"
	QuoteStatusUsed    QuoteStatus = "USED"
	QuoteStatusExpired QuoteStatus = "EXPIRED"
)

// Quote is a persisted, time-bounded, single-use reservation of a
// QuoteResult. The request and result snapshots plus the flattened rule
// identifiers keep the record audit-reconstructible on their own.
type Quote struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	UserID      uuid.UUID         `json:"user_id" db:"user_id"`
	Status      QuoteStatus       `json:"status" db:"status"`
	Request     NormalizedRequest `json:"request" db:"request"`
	Result      QuoteResult       `json:"result" db:"result"`
	RuleID      uuid.UUID         `json:"rule_id" db:"rule_id"`
	RuleVersion int               `json:"rule_version" db:"rule_version"`
	FxRuleID    *uuid.UUID        `json:"fx_rule_id,omitempty" db:"fx_rule_id"`
	Metadata    Metadata          `json:"metadata,omitempty" db:"metadata"`
	ExpiresAt   time.Time         `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus evaluates expiry lazily: a stored ACTIVE past its
// expiresAt reads as EXPIRED without any row being rewritten.
func (q *Quote) EffectiveStatus(now time.Time) QuoteStatus {
	if q.Status == QuoteStatusActive && now.After(q.ExpiresAt) {
		return QuoteStatusExpired
	}
	return q.Status
}

// Metadata is a JSON-compatible map
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *Metadata) Scan(value interface{}) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, &m)
}
