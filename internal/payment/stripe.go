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
)

const defaultBaseURL = "https://api.stripe.com"

// StripeClient implements Client against the Stripe checkout sessions API.
type StripeClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// StripeOption customizes a StripeClient.
type StripeOption func(*StripeClient)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(u string) StripeOption {
	return func(c *StripeClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) StripeOption {
	return func(c *StripeClient) { c.httpClient = hc }
}

// NewStripeClient creates a Client that talks to Stripe with the given
// secret key.
func NewStripeClient(secretKey string, opts ...StripeOption) *StripeClient {
	c := &StripeClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		secretKey:  secretKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession creates a hosted checkout session and returns its id and
// redirect URL. Context cancellation aborts the request.
func (c *StripeClient) CreateSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	form := encodeSessionForm(req)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building checkout session request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading checkout session response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Status:  resp.StatusCode,
			Message: decodeErrorMessage(body),
		}
	}

	var decoded struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decoding checkout session response: %w", err)
	}

	return &Session{ID: decoded.ID, URL: decoded.URL}, nil
}

// encodeSessionForm flattens a SessionRequest into Stripe's bracketed form
// encoding.
func encodeSessionForm(req *SessionRequest) url.Values {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}

	for i, item := range req.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		for j, img := range item.Images {
			form.Set(fmt.Sprintf("%s[price_data][product_data][images][%d]", prefix, j), img)
		}
		if item.ProductID != "" {
			form.Set(prefix+"[price_data][product_data][metadata][productId]", item.ProductID)
		}
		if item.Type != "" {
			form.Set(prefix+"[price_data][product_data][metadata][type]", item.Type)
		}
	}

	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}
	return form
}

func decodeErrorMessage(body []byte) string {
	var decoded struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Error.Message == "" {
		return "unexpected response"
	}
	return decoded.Error.Message
}
