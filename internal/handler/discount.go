package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/quantshop/storefront/internal/domain/discount"
)

type validateDiscountRequest struct {
	Code   string  `json:"code"`
	Amount float64 `json:"amount"`
}

type validateDiscountResponse struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalAmount    float64 `json:"finalAmount"`
	Description    string  `json:"description"`
}

// ValidateDiscount handles POST /api/validate-discount.
func (h *Handler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Discount code is required")
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "Amount must not be negative")
		return
	}

	quote, err := h.ledger.Validate(req.Code, decimal.NewFromFloat(req.Amount))
	if err != nil {
		writeError(w, http.StatusBadRequest, discountErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, validateDiscountResponse{
		Valid:          true,
		DiscountAmount: quote.DiscountAmount.InexactFloat64(),
		FinalAmount:    quote.FinalAmount.InexactFloat64(),
		Description:    quote.Description,
	})
}

type applyDiscountRequest struct {
	Code string `json:"code"`
}

type applyDiscountResponse struct {
	Success bool `json:"success"`
}

// ApplyDiscount handles POST /api/apply-discount.
func (h *Handler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	var req applyDiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Discount code is required")
		return
	}

	if err := h.ledger.Apply(req.Code); err != nil {
		writeError(w, http.StatusBadRequest, discountErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, applyDiscountResponse{Success: true})
}

func discountErrorMessage(err error) string {
	var bmErr *discount.BelowMinimumError
	switch {
	case errors.Is(err, discount.ErrInvalidCode):
		return "Invalid discount code"
	case errors.Is(err, discount.ErrExpired):
		return "Discount code has expired"
	case errors.As(err, &bmErr):
		return "Minimum order amount of $" + bmErr.Minimum.StringFixed(2) + " required"
	default:
		return "Failed to validate discount code"
	}
}
