package shipping

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/tanawat-dev/eventshop-backend/pkg/config"
	pkgerrors "github.com/tanawat-dev/eventshop-backend/pkg/errors"
)

// ProviderOption is one shipping method as the provider reports it.
type ProviderOption struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	IsDefault bool            `json:"is_default"`
}

// FlatRate is the provider's single-rate configuration. When enabled it
// replaces the option list.
type FlatRate struct {
	Enabled bool            `json:"enabled"`
	Amount  decimal.Decimal `json:"amount"`
}

// ProviderResponse is the provider payload for a store's shipping setup.
type ProviderResponse struct {
	FlatRate *FlatRate        `json:"flat_rate,omitempty"`
	Options  []ProviderOption `json:"options,omitempty"`
}

// Provider fetches shipping configuration for a store.
type Provider interface {
	FetchOptions(ctx context.Context, storeName string) (*ProviderResponse, error)
}

type httpProvider struct {
	baseURL     string
	client      *http.Client
	maxAttempts uint64
}

// NewHTTPProvider builds the provider client. Fetches are retried with
// exponential backoff since the endpoint is read-only.
func NewHTTPProvider(cfg config.ShippingConfig) (Provider, error) {
	if cfg.BaseURL == "" {
		return nil, stdErrors.New("shipping: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("shipping: invalid base url: %w", err)
	}

	attempts := uint64(cfg.MaxAttempts)
	if attempts == 0 {
		attempts = 1
	}
	return &httpProvider{
		baseURL:     cfg.BaseURL,
		client:      &http.Client{Timeout: cfg.Timeout},
		maxAttempts: attempts,
	}, nil
}

func (p *httpProvider) FetchOptions(ctx context.Context, storeName string) (*ProviderResponse, error) {
	if storeName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}

	endpoint := fmt.Sprintf("%s/stores/%s/shipping", p.baseURL, url.PathEscape(storeName))

	var payload ProviderResponse
	backoff := retry.WithMaxRetries(p.maxAttempts-1, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(fmt.Errorf("shipping provider returned %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("shipping provider returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&payload)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching shipping options")
	}
	return &payload, nil
}
