package checkout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantshop/storefront/internal/domain/discount"
	"github.com/quantshop/storefront/internal/payment"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type mockValidator struct {
	quote *discount.Quote
	err   error

	gotCode   string
	gotAmount decimal.Decimal
}

func (m *mockValidator) Validate(code string, amount decimal.Decimal) (*discount.Quote, error) {
	m.gotCode = code
	m.gotAmount = amount
	return m.quote, m.err
}

type mockPayments struct {
	session *payment.Session
	err     error
	gotReq  *payment.SessionRequest
}

func (m *mockPayments) CreateSession(_ context.Context, req *payment.SessionRequest) (*payment.Session, error) {
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func newTestService(v *mockValidator, p *mockPayments) *Service {
	return NewService(v, p, Config{
		DefaultSuccessURL: "https://shop.example/success?session_id={CHECKOUT_SESSION_ID}",
		DefaultCancelURL:  "https://shop.example/cancel",
	})
}

func twoItemCart() []CartItem {
	return []CartItem{
		{ID: "software-basic", Name: "Trader Basic", Price: d("49.99"), Quantity: 2, Image: "https://cdn.example/basic.png"},
		{ID: "ebook-beginner", Name: "Trading for Beginners", Price: d("19.99"), Quantity: 1, Type: "ebook"},
	}
}

func TestCreateSession_EmptyCart(t *testing.T) {
	svc := newTestService(&mockValidator{}, &mockPayments{})

	_, err := svc.CreateSession(context.Background(), Request{})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateSession_InvalidQuantity(t *testing.T) {
	svc := newTestService(&mockValidator{}, &mockPayments{})

	_, err := svc.CreateSession(context.Background(), Request{
		Items: []CartItem{{ID: "x", Name: "X", Price: d("10"), Quantity: 0}},
	})

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "x", iqErr.ItemID)
}

func TestCreateSession_NoDiscount(t *testing.T) {
	payments := &mockPayments{session: &payment.Session{ID: "cs_1", URL: "https://pay.example/cs_1"}}
	svc := newTestService(&mockValidator{}, payments)

	session, err := svc.CreateSession(context.Background(), Request{Items: twoItemCart()})
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_1", session.URL)

	req := payments.gotReq
	require.NotNil(t, req)
	require.Len(t, req.LineItems, 2, "no synthetic discount line without a code")

	assert.Equal(t, int64(4999), req.LineItems[0].UnitAmount)
	assert.Equal(t, 2, req.LineItems[0].Quantity)
	assert.Equal(t, []string{"https://cdn.example/basic.png"}, req.LineItems[0].Images)
	assert.Equal(t, "digital", req.LineItems[0].Type, "missing type falls back to digital")
	assert.Equal(t, "ebook", req.LineItems[1].Type)
}

func TestCreateSession_WithDiscount(t *testing.T) {
	validator := &mockValidator{quote: &discount.Quote{
		DiscountAmount: d("23.99"),
		FinalAmount:    d("95.98"),
		Description:    "20% off orders over $50",
	}}
	payments := &mockPayments{session: &payment.Session{ID: "cs_2", URL: "u"}}
	svc := newTestService(validator, payments)

	_, err := svc.CreateSession(context.Background(), Request{
		Items:        twoItemCart(),
		DiscountCode: "SAVE20",
	})
	require.NoError(t, err)

	// Validator receives the computed subtotal: 2*49.99 + 19.99 = 119.97.
	assert.Equal(t, "SAVE20", validator.gotCode)
	assert.True(t, validator.gotAmount.Equal(d("119.97")),
		"expected subtotal 119.97, got %s", validator.gotAmount)

	req := payments.gotReq
	require.Len(t, req.LineItems, 3)
	last := req.LineItems[2]
	assert.Equal(t, "Discount (SAVE20)", last.Name)
	assert.Equal(t, int64(-2399), last.UnitAmount)
	assert.Equal(t, 1, last.Quantity)
	assert.Equal(t, "discount", last.Type)
}

func TestCreateSession_DiscountFailureIsSilent(t *testing.T) {
	validator := &mockValidator{err: discount.ErrExpired}
	payments := &mockPayments{session: &payment.Session{ID: "cs_3", URL: "u"}}
	svc := newTestService(validator, payments)

	_, err := svc.CreateSession(context.Background(), Request{
		Items:        twoItemCart(),
		DiscountCode: "SAVE20",
	})

	require.NoError(t, err, "discount failure must not fail the checkout")
	require.Len(t, payments.gotReq.LineItems, 2, "no discount line when validation fails")
}

func TestCreateSession_Metadata(t *testing.T) {
	payments := &mockPayments{session: &payment.Session{ID: "cs_4", URL: "u"}}
	svc := newTestService(&mockValidator{quote: &discount.Quote{DiscountAmount: d("5")}}, payments)

	_, err := svc.CreateSession(context.Background(), Request{
		Items:        twoItemCart(),
		DiscountCode: "WELCOME10",
	})
	require.NoError(t, err)

	meta := payments.gotReq.Metadata
	assert.Equal(t, "WELCOME10", meta["discountCode"])
	assert.Equal(t, "guest", meta["customerEmail"], "missing email uses the guest placeholder")

	var refs []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal([]byte(meta["cartItems"]), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, "software-basic", refs[0].ID)
	assert.Equal(t, 2, refs[0].Quantity)
}

func TestCreateSession_DefaultURLs(t *testing.T) {
	payments := &mockPayments{session: &payment.Session{ID: "cs_5", URL: "u"}}
	svc := newTestService(&mockValidator{}, payments)

	_, err := svc.CreateSession(context.Background(), Request{Items: twoItemCart()})
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example/success?session_id={CHECKOUT_SESSION_ID}", payments.gotReq.SuccessURL)
	assert.Equal(t, "https://shop.example/cancel", payments.gotReq.CancelURL)
}

func TestCreateSession_ExplicitURLsAndEmail(t *testing.T) {
	payments := &mockPayments{session: &payment.Session{ID: "cs_6", URL: "u"}}
	svc := newTestService(&mockValidator{}, payments)

	_, err := svc.CreateSession(context.Background(), Request{
		Items:         twoItemCart(),
		CustomerEmail: "buyer@example.com",
		SuccessURL:    "https://other.example/ok",
		CancelURL:     "https://other.example/no",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://other.example/ok", payments.gotReq.SuccessURL)
	assert.Equal(t, "https://other.example/no", payments.gotReq.CancelURL)
	assert.Equal(t, "buyer@example.com", payments.gotReq.CustomerEmail)
	assert.Equal(t, "buyer@example.com", payments.gotReq.Metadata["customerEmail"])
}

func TestCreateSession_UpstreamFailurePropagates(t *testing.T) {
	upstream := &payment.UpstreamError{Status: 502, Message: "gateway unavailable"}
	payments := &mockPayments{err: upstream}
	svc := newTestService(&mockValidator{}, payments)

	_, err := svc.CreateSession(context.Background(), Request{Items: twoItemCart()})

	var upErr *payment.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.False(t, errors.Is(err, ErrEmptyCart))
}
