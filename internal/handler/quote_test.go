package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefx/internal/domain"
	"pricefx/internal/forex"
	"pricefx/internal/pricing"
	"pricefx/internal/quotelock"
	pricefxerrors "pricefx/pkg/errors"
	"pricefx/pkg/logger"
	"pricefx/pkg/validator"
)

type stubRuleStore struct {
	rules []domain.PricingRule
}

func (s *stubRuleStore) ListActive(ctx context.Context) ([]domain.PricingRule, error) {
	return s.rules, nil
}

type stubFxRuleStore struct {
	rules []domain.FxRule
}

func (s *stubFxRuleStore) ListActive(ctx context.Context) ([]domain.FxRule, error) {
	return s.rules, nil
}

type memQuoteRepo struct {
	quotes map[uuid.UUID]*domain.Quote
}

func newMemQuoteRepo() *memQuoteRepo {
	return &memQuoteRepo{quotes: make(map[uuid.UUID]*domain.Quote)}
}

func (r *memQuoteRepo) Insert(ctx context.Context, quote *domain.Quote) error {
	stored := *quote
	r.quotes[quote.ID] = &stored
	return nil
}

func (r *memQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, ok := r.quotes[id]
	if !ok {
		return nil, pricefxerrors.ErrQuoteNotFound
	}
	copied := *quote
	return &copied, nil
}

func newTestRouter(rules []domain.PricingRule) (*mux.Router, *memQuoteRepo) {
	ratesSource := forex.NewFixedSource(map[string]decimal.Decimal{
		"EUR-XOF": decimal.RequireFromString("655.0"),
	})

	repo := newMemQuoteRepo()
	locks := quotelock.NewService(repo, 10*time.Minute, logger.NewNop())
	svc := pricing.NewService(&stubRuleStore{rules: rules}, &stubFxRuleStore{}, ratesSource, locks, logger.NewNop())

	h := NewQuoteHandler(svc, locks, validator.New(), logger.NewNop())

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/quotes/preview", h.Preview).Methods("POST")
	r.HandleFunc("/api/v1/quotes/lock", h.Lock).Methods("POST")
	r.HandleFunc("/api/v1/quotes/{id}", h.Get).Methods("GET")
	return r, repo
}

func activeRule() domain.PricingRule {
	return domain.PricingRule{
		ID:           uuid.New(),
		TxType:       domain.TxTransfer,
		FromCurrency: "EUR",
		ToCurrency:   "XOF",
		FeeMode:      domain.FeeModePercent,
		FeePercent:   decimal.NewFromInt(2),
		FxMode:       domain.FxModeMarket,
		Active:       true,
		Version:      1,
		UpdatedAt:    time.Now(),
	}
}

func postJSON(t *testing.T, router *mux.Router, path string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPreviewEndpoint(t *testing.T) {
	router, _ := newTestRouter([]domain.PricingRule{activeRule()})

	rec := postJSON(t, router, "/api/v1/quotes/preview", map[string]interface{}{
		"tx_type":       "TRANSFER",
		"amount":        "1000",
		"from_currency": "EUR",
		"to_currency":   "XOF",
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.QuoteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Fee.Equal(decimal.NewFromInt(20)))
	assert.True(t, result.NetTo.Equal(decimal.NewFromInt(641900)))
}

func TestPreviewEndpointNoRule(t *testing.T) {
	router, _ := newTestRouter(nil)

	rec := postJSON(t, router, "/api/v1/quotes/preview", map[string]interface{}{
		"tx_type":       "TRANSFER",
		"amount":        "1000",
		"from_currency": "EUR",
		"to_currency":   "XOF",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NO_RULE_MATCHED", body["kind"])
}

func TestPreviewEndpointInvalidBody(t *testing.T) {
	router, _ := newTestRouter(nil)

	rec := postJSON(t, router, "/api/v1/quotes/preview", map[string]interface{}{
		"tx_type": "TRANSFER",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLockAndGetEndpoint(t *testing.T) {
	router, _ := newTestRouter([]domain.PricingRule{activeRule()})
	userID := uuid.New()

	rec := postJSON(t, router, "/api/v1/quotes/lock", map[string]interface{}{
		"user_id":       userID.String(),
		"tx_type":       "send",
		"amount":        "1000",
		"from_currency": "EUR",
		"to_currency":   "XOF",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var quote domain.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, domain.QuoteStatusActive, quote.Status)
	assert.Equal(t, userID, quote.UserID)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/"+quote.ID.String(), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)

	require.Equal(t, http.StatusOK, getRec.Code)

	var fetched domain.Quote
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &fetched))
	assert.Equal(t, quote.ID, fetched.ID)
	assert.Equal(t, domain.QuoteStatusActive, fetched.Status)
}

func TestGetUnknownQuote(t *testing.T) {
	router, _ := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
