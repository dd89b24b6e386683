// Package gateway is the adapter to the external payment provider. The provider is
// untrusted: every result it returns is verified by the caller before state changes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Payment statuses reported by the provider that count as a completed payment.
const (
	StatusCaptured   = "captured"
	StatusAuthorized = "authorized"
)

// OrderRequest creates a provider order. Amount is in minor units.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

type Order struct {
	ID        string
	Amount    int64
	Currency  string
	Receipt   string
	Status    string
	CreatedAt time.Time
}

// Payment is the provider's record of a payment attempt.
type Payment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
	Method   string
}

// Completed reports whether the provider considers the payment successful.
func (p *Payment) Completed() bool {
	return p.Status == StatusCaptured || p.Status == StatusAuthorized
}

// Gateway is the narrow contract the booking core uses.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifySignature(ctx context.Context, orderID, paymentID, signature string) (bool, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// ErrGateway matches every *Error with errors.Is.
var ErrGateway = errors.New("payment gateway error")

// Error is returned for any failed provider call.
type Error struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("gateway %s failed", e.Op)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Code != "" {
		msg += ": " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrGateway }
