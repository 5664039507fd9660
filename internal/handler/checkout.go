package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/quantshop/storefront/internal/domain/checkout"
)

type cartItemDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image,omitempty"`
	Type     string  `json:"type,omitempty"`
}

type checkoutRequest struct {
	Items         []cartItemDTO `json:"items"`
	DiscountCode  string        `json:"discountCode"`
	CustomerEmail string        `json:"customerEmail"`
	SuccessURL    string        `json:"successUrl"`
	CancelURL     string        `json:"cancelUrl"`
}

type checkoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCartCheckoutSession handles POST /api/create-cart-checkout-session.
func (h *Handler) CreateCartCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]checkout.CartItem, len(req.Items))
	for i, it := range req.Items {
		if it.Price < 0 {
			writeError(w, http.StatusBadRequest, "Item price must not be negative")
			return
		}
		items[i] = checkout.CartItem{
			ID:       it.ID,
			Name:     it.Name,
			Price:    decimal.NewFromFloat(it.Price),
			Quantity: it.Quantity,
			Image:    it.Image,
			Type:     it.Type,
		}
	}

	session, err := h.checkout.CreateSession(r.Context(), checkout.Request{
		Items:         items,
		DiscountCode:  req.DiscountCode,
		CustomerEmail: req.CustomerEmail,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	})
	if err != nil {
		var iqErr *checkout.InvalidQuantityError
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "Cart is empty")
		case errors.As(err, &iqErr):
			writeError(w, http.StatusBadRequest, iqErr.Error())
		default:
			writeInternalError(w, r, "Failed to create checkout session", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, checkoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}
