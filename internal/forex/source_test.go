package forex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
	"pricefx/pkg/logger"
)

type MockStoredRateRepository struct {
	mock.Mock
}

func (m *MockStoredRateRepository) GetCustomRate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockSnapshotCache struct {
	mock.Mock
}

func (m *MockSnapshotCache) Get(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSnapshotCache) Set(ctx context.Context, from, to domain.Currency, rate decimal.Decimal, ttl time.Duration) error {
	args := m.Called(ctx, from, to, rate, ttl)
	return args.Error(0)
}

func TestChainSourceSameCurrency(t *testing.T) {
	source := NewChainSource(nil, nil, nil, time.Minute, time.Second, logger.NewNop())

	rate, err := source.Rate(context.Background(), "EUR", "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestChainSourcePrefersStoredRate(t *testing.T) {
	repo := new(MockStoredRateRepository)
	repo.On("GetCustomRate", mock.Anything, domain.Currency("EUR"), domain.Currency("XOF")).
		Return(decimal.RequireFromString("650"), nil)

	provider := NewFixedSource(map[string]decimal.Decimal{
		"EUR-XOF": decimal.RequireFromString("655"),
	})

	source := NewChainSource(repo, provider, nil, time.Minute, time.Second, logger.NewNop())

	rate, err := source.Rate(context.Background(), "EUR", "XOF")
	require.NoError(t, err)
	assert.Equal(t, "650", rate.String())
	repo.AssertExpectations(t)
}

func TestChainSourceFallsBackToProvider(t *testing.T) {
	repo := new(MockStoredRateRepository)
	repo.On("GetCustomRate", mock.Anything, mock.Anything, mock.Anything).
		Return(decimal.Zero, errors.ErrRateUnavailable)

	cache := new(MockSnapshotCache)
	cache.On("Set", mock.Anything, domain.Currency("EUR"), domain.Currency("XOF"),
		decimal.RequireFromString("655"), time.Minute).Return(nil)

	provider := NewFixedSource(map[string]decimal.Decimal{
		"EUR-XOF": decimal.RequireFromString("655"),
	})

	source := NewChainSource(repo, provider, cache, time.Minute, time.Second, logger.NewNop())

	rate, err := source.Rate(context.Background(), "EUR", "XOF")
	require.NoError(t, err)
	assert.Equal(t, "655", rate.String())
	cache.AssertExpectations(t)
}

func TestChainSourceFallsBackToSnapshot(t *testing.T) {
	provider := NewFixedSource(nil)

	cache := new(MockSnapshotCache)
	cache.On("Get", mock.Anything, domain.Currency("EUR"), domain.Currency("XOF")).
		Return(decimal.RequireFromString("654.5"), nil)

	source := NewChainSource(nil, provider, cache, time.Minute, time.Second, logger.NewNop())

	rate, err := source.Rate(context.Background(), "EUR", "XOF")
	require.NoError(t, err)
	assert.Equal(t, "654.5", rate.String())
}

func TestChainSourceUnavailable(t *testing.T) {
	source := NewChainSource(nil, NewFixedSource(nil), nil, time.Minute, time.Second, logger.NewNop())

	_, err := source.Rate(context.Background(), "EUR", "XOF")
	require.Error(t, err)
	assert.Equal(t, errors.KindRateUnavailable, errors.KindOf(err))
}

func TestHTTPProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EUR", r.URL.Query().Get("from"))
		assert.Equal(t, "XOF", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rate":"655.957"}`))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, srv.Client())
	rate, err := provider.Rate(context.Background(), "EUR", "XOF")
	require.NoError(t, err)
	assert.Equal(t, "655.957", rate.String())
}

func TestHTTPProviderRejectsNonPositiveRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rate":"0"}`))
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, srv.Client())
	_, err := provider.Rate(context.Background(), "EUR", "XOF")
	require.Error(t, err)
	assert.Equal(t, errors.KindRateUnavailable, errors.KindOf(err))
}

func TestHTTPProviderUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	provider := NewHTTPProvider(srv.URL, srv.Client())
	_, err := provider.Rate(context.Background(), "EUR", "XOF")
	require.Error(t, err)
	assert.Equal(t, errors.KindRateUnavailable, errors.KindOf(err))
}
