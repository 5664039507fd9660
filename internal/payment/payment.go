// Package payment defines the external payment processor collaborator.
package payment

import (
	"context"
	"fmt"
)

// LineItem is a single entry in a checkout session. UnitAmount is expressed
// in the currency's minor unit (cents) and may be negative for discounts.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int
	Images     []string
	ProductID  string
	Type       string
}

// SessionRequest describes a checkout session to be created by the processor.
// Metadata round-trips opaquely through the processor and must be returned
// unchanged in webhook notifications.
type SessionRequest struct {
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// Session is the processor's handle for a created checkout session.
type Session struct {
	ID  string
	URL string
}

// Client creates checkout sessions with the payment processor.
type Client interface {
	CreateSession(ctx context.Context, req *SessionRequest) (*Session, error)
}

// UpstreamError carries the processor's HTTP status and message. The message
// is for logs only and must not be surfaced to API clients.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("payment processor returned %d: %s", e.Status, e.Message)
}
