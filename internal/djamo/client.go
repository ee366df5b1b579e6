// Package djamo is a client for the Djamo collection (charge) API.
package djamo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var ErrNotConfigured = errors.Wrap(domain.ErrGatewayUnconfigured, "djamo: DJAMO_API_KEY and DJAMO_COMPANY_ID must be set")

// APIError is returned for any non-2xx answer from the gateway.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("djamo api error (%d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type CreateChargeRequest struct {
	Amount                    int64             `json:"amount"`
	ExternalID                string            `json:"externalId"`
	Description               string            `json:"description"`
	OnCompletedRedirectionURL string            `json:"onCompletedRedirectionUrl"`
	OnCanceledRedirectionURL  string            `json:"onCanceledRedirectionUrl"`
	Metadata                  map[string]string `json:"metadata,omitempty"`
}

type refundRequest struct {
	Amount *int64 `json:"amount,omitempty"`
}

type Client struct {
	baseURL   string
	apiKey    string
	companyID string
	secret    string
	http      *http.Client
}

func NewClient(cfg config.Djamo) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		companyID: cfg.CompanyID,
		secret:    cfg.WebhookSecret,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Configured is true when both the API key and the company id are present.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.companyID != ""
}

func (c *Client) CreateCharge(ctx context.Context, req CreateChargeRequest) (*domain.Charge, error) {
	var ch domain.Charge
	if err := c.do(ctx, "create", http.MethodPost, "/v1/charges", req, true, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) GetCharge(ctx context.Context, chargeID string) (*domain.Charge, error) {
	var ch domain.Charge
	if err := c.do(ctx, "get", http.MethodGet, "/v1/charges/"+url.PathEscape(chargeID), nil, false, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// RefundCharge refunds the whole charge when amount is nil.
func (c *Client) RefundCharge(ctx context.Context, chargeID string, amount *int64) (*domain.Charge, error) {
	var ch domain.Charge
	path := "/v1/charges/" + url.PathEscape(chargeID) + "/refund"
	if err := c.do(ctx, "refund", http.MethodPost, path, refundRequest{Amount: amount}, false, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, withCompany bool, out interface{}) (err error) {
	if !c.Configured() {
		return ErrNotConfigured
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		observability.GatewayRequestDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode djamo request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build djamo request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if withCompany {
		req.Header.Set("X-Company-Id", c.companyID)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "djamo %s", op)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "read djamo response")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &APIError{StatusCode: res.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode djamo response")
	}
	return nil
}
