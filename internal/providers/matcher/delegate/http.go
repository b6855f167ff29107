package delegate

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/formclip/internal/infrastructure/config"
	"github.com/GriffinCanCode/formclip/internal/infrastructure/tracing"
)

// HTTPClient posts Request as JSON to a mapping endpoint and expects a
// Response back. Retries are left to the caller; the client only
// classifies failures.
type HTTPClient struct {
	resty    *resty.Client
	limiter  *rate.Limiter
	endpoint string
}

// NewHTTPClient creates a client for cfg.Endpoint.
func NewHTTPClient(cfg config.DelegateConfig) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	// retryablehttp's pooled transport, without its retry loop
	transport := retryablehttp.NewClient().HTTPClient.Transport

	r := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "formclip/1.0").
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if cfg.APIKey != "" {
		r.SetAuthToken(cfg.APIKey)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HTTPClient{resty: r, limiter: limiter, endpoint: cfg.Endpoint}, nil
}

// MapFields sends one mapping request.
func (c *HTTPClient) MapFields(ctx context.Context, req Request) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	headers := http.Header{}
	tracing.Inject(ctx, headers)

	resp, err := c.resty.R().
		SetContext(ctx).
		SetHeaderMultiValues(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if retryable(ctx, nil, err) {
			return nil, fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return nil, fmt.Errorf("delegate request: %w", err)
	}

	if resp.IsError() {
		if retryable(ctx, resp.RawResponse, nil) {
			return nil, fmt.Errorf("%w: status %d", ErrTransient, resp.StatusCode())
		}
		return nil, fmt.Errorf("delegate returned status %d", resp.StatusCode())
	}

	return ParseResponse(resp.String())
}

// retryable applies retryablehttp's policy: connection errors, 429 and
// 5xx other than 501 are worth another attempt.
func retryable(ctx context.Context, resp *http.Response, err error) bool {
	ok, _ := retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	return ok
}
