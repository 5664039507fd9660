package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeClient_CreateSession(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_abc","url":"https://checkout.example/cs_test_abc"}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_123", WithBaseURL(srv.URL))
	session, err := client.CreateSession(context.Background(), &SessionRequest{
		LineItems: []LineItem{
			{Name: "Trader Pro", UnitAmount: 14999, Quantity: 1, ProductID: "software-pro", Type: "digital"},
			{Name: "Discount (SAVE20)", UnitAmount: -3000, Quantity: 1, Type: "discount"},
		},
		SuccessURL:    "https://shop.example/success",
		CancelURL:     "https://shop.example/cancel",
		CustomerEmail: "buyer@example.com",
		Metadata:      map[string]string{"discountCode": "SAVE20"},
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc", session.ID)
	assert.Equal(t, "https://checkout.example/cs_test_abc", session.URL)

	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "14999", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "-3000", gotForm["line_items[1][price_data][unit_amount]"][0])
	assert.Equal(t, "software-pro", gotForm["line_items[0][price_data][product_data][metadata][productId]"][0])
	assert.Equal(t, "SAVE20", gotForm["metadata[discountCode]"][0])
	assert.Equal(t, "buyer@example.com", gotForm["customer_email"][0])
}

func TestStripeClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := NewStripeClient("sk_test_123", WithBaseURL(srv.URL))
	_, err := client.CreateSession(context.Background(), &SessionRequest{
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusPaymentRequired, upErr.Status)
	assert.Equal(t, "Your card was declined.", upErr.Message)
}
