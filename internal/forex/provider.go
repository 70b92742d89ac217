package forex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
	"pricefx/pkg/errors"
)

// HTTPProvider fetches rates from an external JSON rate API.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProvider{baseURL: baseURL, client: client}
}

type rateResponse struct {
	Rate decimal.Decimal `json:"rate"`
}

// Rate fetches the rate for from/to. Any transport or decode failure, and
// any non-positive value, surfaces as rate unavailable.
func (p *HTTPProvider) Rate(ctx context.Context, from, to domain.Currency) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/rate?from=%s&to=%s",
		p.baseURL, url.QueryEscape(string(from)), url.QueryEscape(string(to)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, errors.E(errors.KindRateUnavailable, "failed to build rate request").WithCause(err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, errors.E(errors.KindRateUnavailable, "rate provider unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, errors.Ef(errors.KindRateUnavailable,
			"rate provider returned status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, errors.E(errors.KindRateUnavailable, "invalid rate provider response").WithCause(err)
	}

	if !body.Rate.IsPositive() {
		return decimal.Zero, errors.Ef(errors.KindRateUnavailable,
			"rate provider returned non-positive rate %s for %s/%s", body.Rate, from, to)
	}

	return body.Rate, nil
}
