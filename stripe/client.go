package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.stripe.com"

// Payment statuses reported on a checkout session.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// Config holds the Stripe credentials and endpoint.
type Config struct {
	SecretKey string
	APIURL    string
}

// ConfigFromEnv picks up STRIPE_SECRET_KEY and optionally STRIPE_API_URL.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		APIURL:    os.Getenv("STRIPE_API_URL"),
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.SecretKey == "" {
		return Config{}, fmt.Errorf("stripe configuration missing")
	}
	return cfg, nil
}

// LineItem is one priced entry of a checkout session. UnitAmount is in the
// minor currency unit (tiyn for KZT, cents for USD).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
	Image      string
}

// CheckoutParams describes a checkout session to be created.
type CheckoutParams struct {
	LineItems     []LineItem
	Currency      string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	// OrderID is embedded as session metadata so verification can recover
	// the order without trusting client input.
	OrderID string
}

// CheckoutSession is the subset of the session object this service reads.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// APIError is a non-2xx response from Stripe.
type APIError struct {
	StatusCode int
	Type       string `json:"type"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe API error (%d): %s", e.StatusCode, e.Message)
}

type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		secretKey:  cfg.SecretKey,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCheckoutSession creates a hosted checkout session and returns its id
// and redirect URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("currency", p.Currency)
	form.Set("customer_email", p.CustomerEmail)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("metadata[orderId]", p.OrderID)

	for i, item := range p.LineItems {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[price_data][currency]", p.Currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Image != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", item.Image)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	if session.URL == "" {
		return nil, fmt.Errorf("stripe returned empty checkout URL")
	}
	return &session, nil
}

// RetrieveSession fetches the authoritative state of a checkout session.
func (c *Client) RetrieveSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	var session CheckoutSession
	if err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Stripe: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var wrapper struct {
			Error *APIError `json:"error"`
		}
		if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Error != nil {
			apiErr.Type = wrapper.Error.Type
			apiErr.Message = wrapper.Error.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse Stripe response: %w", err)
	}
	return nil
}
