// Package checkout assembles cart checkout sessions for the external payment
// processor.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quantshop/storefront/internal/domain/discount"
	"github.com/quantshop/storefront/internal/payment"
)

// ErrEmptyCart is returned when a checkout request carries no items.
var ErrEmptyCart = errors.New("cart is empty")

// InvalidQuantityError indicates a cart item has a non-positive quantity.
type InvalidQuantityError struct {
	ItemID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s", e.ItemID)
}

// CartItem is one line of a checkout cart. Carts are transient: they are
// assembled per request and never persisted here.
type CartItem struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
	Image    string
	Type     string
}

// Request holds the input for creating a checkout session.
type Request struct {
	Items         []CartItem
	DiscountCode  string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// DiscountValidator quotes a discount for an order amount.
type DiscountValidator interface {
	Validate(code string, amount decimal.Decimal) (*discount.Quote, error)
}

// Config holds fallback URLs used when the request omits them.
type Config struct {
	DefaultSuccessURL string
	DefaultCancelURL  string
}

// Service converts carts into payment sessions.
type Service struct {
	discounts DiscountValidator
	payments  payment.Client
	cfg       Config
}

// NewService creates a checkout Service.
func NewService(discounts DiscountValidator, payments payment.Client, cfg Config) *Service {
	return &Service{discounts: discounts, payments: payments, cfg: cfg}
}

var cents = decimal.NewFromInt(100)

// CreateSession computes cart totals, quotes the discount, builds the payment
// line items in integer minor units, and delegates session creation to the
// payment processor. A discount code that fails validation is ignored and the
// checkout proceeds with zero discount.
func (s *Service) CreateSession(ctx context.Context, req Request) (*payment.Session, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemID: item.ID}
		}
	}

	subtotal := decimal.Zero
	for _, item := range req.Items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discountAmount := decimal.Zero
	if req.DiscountCode != "" {
		quote, err := s.discounts.Validate(req.DiscountCode, subtotal)
		if err != nil {
			zctx.From(ctx).Debug("Discount rejected during checkout, proceeding without it",
				zap.String("code", req.DiscountCode),
				zap.Error(err),
			)
		} else {
			discountAmount = quote.DiscountAmount
		}
	}

	lineItems := make([]payment.LineItem, 0, len(req.Items)+1)
	for _, item := range req.Items {
		li := payment.LineItem{
			Name:       item.Name,
			UnitAmount: toMinorUnits(item.Price),
			Quantity:   item.Quantity,
			ProductID:  item.ID,
			Type:       itemType(item),
		}
		if item.Image != "" {
			li.Images = []string{item.Image}
		}
		lineItems = append(lineItems, li)
	}

	if discountAmount.IsPositive() {
		lineItems = append(lineItems, payment.LineItem{
			Name:       fmt.Sprintf("Discount (%s)", req.DiscountCode),
			UnitAmount: -toMinorUnits(discountAmount),
			Quantity:   1,
			Type:       "discount",
		})
	}

	metadata, err := buildMetadata(req)
	if err != nil {
		return nil, errors.Wrap(err, "build session metadata")
	}

	session, err := s.payments.CreateSession(ctx, &payment.SessionRequest{
		LineItems:     lineItems,
		SuccessURL:    orDefault(req.SuccessURL, s.cfg.DefaultSuccessURL),
		CancelURL:     orDefault(req.CancelURL, s.cfg.DefaultCancelURL),
		CustomerEmail: req.CustomerEmail,
		Metadata:      metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create payment session")
	}
	return session, nil
}

// toMinorUnits converts a decimal currency amount into integer minor units
// (cents), rounding to the nearest unit to avoid fractional drift.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(cents).Round(0).IntPart()
}

// buildMetadata captures the original cart for later reconciliation. It
// round-trips opaquely through the payment processor.
func buildMetadata(req Request) (map[string]string, error) {
	type cartRef struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	}
	refs := make([]cartRef, len(req.Items))
	for i, item := range req.Items {
		refs[i] = cartRef{ID: item.ID, Quantity: item.Quantity}
	}
	encoded, err := json.Marshal(refs)
	if err != nil {
		return nil, err
	}

	email := req.CustomerEmail
	if email == "" {
		email = "guest"
	}
	return map[string]string{
		"cartItems":     string(encoded),
		"discountCode":  req.DiscountCode,
		"customerEmail": email,
	}, nil
}

func itemType(item CartItem) string {
	if item.Type == "" {
		return "digital"
	}
	return item.Type
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
