package discount

import (
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Ledger holds the discount code catalog and tracks redemptions. Codes are
// looked up case-insensitively. All state mutation goes through the ledger's
// mutex so concurrent Apply calls never lose an increment.
type Ledger struct {
	mu    sync.Mutex
	codes map[string]*Code
	now   func() time.Time
}

// NewLedger creates a Ledger seeded with the given codes.
func NewLedger(codes []Code) *Ledger {
	m := make(map[string]*Code, len(codes))
	for i := range codes {
		c := codes[i]
		m[strings.ToUpper(c.Code)] = &c
	}
	return &Ledger{codes: m, now: time.Now}
}

// Validate checks a code against an order amount and returns the discount
// quote. It does not consume a redemption; call Apply for that.
//
// Errors: ErrInvalidCode for unknown codes, ErrExpired for codes past their
// expiry or redemption cap, BelowMinimumError when the amount is under the
// code's minimum.
func (l *Ledger) Validate(code string, amount decimal.Decimal) (*Quote, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.codes[strings.ToUpper(code)]
	if !ok {
		return nil, ErrInvalidCode
	}

	if c.Uses >= c.MaxUses {
		return nil, ErrExpired
	}
	if l.now().After(c.ExpiresAt) {
		return nil, ErrExpired
	}
	if amount.LessThan(c.MinAmount) {
		return nil, &BelowMinimumError{Minimum: c.MinAmount}
	}

	var discount decimal.Decimal
	switch c.Kind {
	case KindPercentage:
		discount = amount.Mul(c.Value).Div(hundred).Round(2)
	case KindFixed:
		discount = decimal.Min(c.Value, amount)
	}

	return &Quote{
		DiscountAmount: discount,
		FinalAmount:    amount.Sub(discount),
		Description:    c.Description,
	}, nil
}

// Apply consumes one redemption of the given code. Unknown codes return
// ErrInvalidCode; a code at its redemption cap returns ErrExpired so the
// use counter never exceeds the cap. Expiry date and order minimum are not
// re-checked here: a code that passed Validate moments ago is accepted even
// if its date expired in between.
func (l *Ledger) Apply(code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.codes[strings.ToUpper(code)]
	if !ok {
		return ErrInvalidCode
	}
	if c.Uses >= c.MaxUses {
		return ErrExpired
	}
	c.Uses++
	return nil
}
