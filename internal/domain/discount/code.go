package discount

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercentage reduces the order amount by a percentage.
	KindPercentage Kind = "percentage"
	// KindFixed reduces the order amount by a fixed sum, capped at the amount.
	KindFixed Kind = "fixed"
)

var (
	// ErrInvalidCode is returned when a discount code is not in the catalog.
	ErrInvalidCode = errors.New("invalid discount code")
	// ErrExpired is returned when a code is past its expiry date or has
	// exhausted its allowed redemptions.
	ErrExpired = errors.New("discount code has expired")
)

// BelowMinimumError indicates the order amount does not reach the code's
// minimum. The message reports the exact minimum required.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("minimum order amount of $%s required", e.Minimum.StringFixed(2))
}

// Code is a single promotional discount code and its redemption state.
type Code struct {
	Code        string
	Kind        Kind
	Value       decimal.Decimal
	MinAmount   decimal.Decimal
	MaxUses     int
	Uses        int
	ExpiresAt   time.Time
	Description string
}

// Quote holds the outcome of validating a code against an order amount.
type Quote struct {
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	Description    string
}

// DefaultCatalog returns the statically seeded promotional codes.
func DefaultCatalog() []Code {
	expiry := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
	return []Code{
		{
			Code:        "WELCOME10",
			Kind:        KindPercentage,
			Value:       decimal.NewFromInt(10),
			MinAmount:   decimal.Zero,
			MaxUses:     100,
			ExpiresAt:   expiry,
			Description: "10% off for new customers",
		},
		{
			Code:        "SAVE20",
			Kind:        KindPercentage,
			Value:       decimal.NewFromInt(20),
			MinAmount:   decimal.NewFromInt(50),
			MaxUses:     50,
			ExpiresAt:   expiry,
			Description: "20% off orders over $50",
		},
		{
			Code:        "FLAT15",
			Kind:        KindFixed,
			Value:       decimal.NewFromInt(15),
			MinAmount:   decimal.NewFromInt(30),
			MaxUses:     200,
			ExpiresAt:   expiry,
			Description: "$15 off orders over $30",
		},
	}
}
