package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the payment provider's API endpoint.
const DefaultBaseURL = "https://api.stripe.com"

// LineItem is one priced line of a checkout session, built from the
// product's current name, description and price at session-creation time.
type LineItem struct {
	Name        string
	Description string
	ImageURL    string
	UnitAmount  int64 // cents
	Quantity    int
}

// SessionParams describes a checkout session to create.
type SessionParams struct {
	LineItems         []LineItem
	Currency          string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	Metadata          map[string]string
}

// Session is a created checkout session. Only the id is persisted, as a
// weak correlating reference on the order.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Client creates checkout sessions with the external payment provider.
type Client interface {
	CreateCheckoutSession(ctx context.Context, params *SessionParams) (*Session, error)
}

// stripeClient implements Client against the provider's REST API.
type stripeClient struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a payment provider client. baseURL may be empty to use
// the production endpoint; tests point it at a local server.
func NewClient(secretKey, baseURL string, logger zerolog.Logger) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &stripeClient{
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "payment_client").Logger(),
	}
}

// CreateCheckoutSession creates a hosted checkout session for the given
// line items. Provider failures are surfaced, never swallowed.
func (c *stripeClient) CreateCheckoutSession(ctx context.Context, params *SessionParams) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.ClientReferenceID != "" {
		form.Set("client_reference_id", params.ClientReferenceID)
	}
	for k, v := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		if item.ImageURL != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", item.ImageURL)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.SetBasicAuth(c.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("checkout session request failed")
		return nil, model.NewDomainError(model.ErrCodePaymentProvider, fmt.Sprintf("payment provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := providerErrorMessage(body)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("message", msg).
			Msg("checkout session creation rejected by provider")
		return nil, model.NewDomainError(model.ErrCodePaymentProvider, msg)
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	c.logger.Debug().Str("session_id", session.ID).Msg("checkout session created")

	return &session, nil
}

// providerErrorMessage extracts the human-readable message from a provider
// error body, falling back to the raw body.
func providerErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return strings.TrimSpace(string(body))
}
