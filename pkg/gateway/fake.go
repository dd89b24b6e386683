package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Fake is an in-process gateway for local development. Orders are kept in memory
// and payments are created with Pay, which also returns a valid signature.
type Fake struct {
	Secret string

	mu       sync.Mutex
	orders   map[string]*Order
	payments map[string]*Payment
}

var _ Gateway = (*Fake)(nil)

func NewFake(secret string) *Fake {
	return &Fake{Secret: secret, orders: make(map[string]*Order), payments: make(map[string]*Payment)}
}

func (f *Fake) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := &Order{
		ID:        "order_" + uuid.NewString()[:14],
		Amount:    req.Amount,
		Currency:  req.Currency,
		Receipt:   req.Receipt,
		Status:    "created",
		CreatedAt: time.Now().UTC(),
	}
	f.orders[order.ID] = order
	return order, nil
}

func (f *Fake) VerifySignature(_ context.Context, orderID, paymentID, signature string) (bool, error) {
	return VerifyHMAC(f.Secret, orderID, paymentID, signature), nil
}

func (f *Fake) FetchPayment(_ context.Context, paymentID string) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, &Error{Op: "fetch payment", StatusCode: 404, Code: "BAD_REQUEST_ERROR", Message: "payment not found"}
	}
	out := *p
	return &out, nil
}

// Pay records a captured payment of amount for orderID and returns its ID and signature.
func (f *Fake) Pay(orderID string, amount int64, method string) (paymentID, signature string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return "", "", fmt.Errorf("order %s not found", orderID)
	}
	paymentID = "pay_" + uuid.NewString()[:14]
	f.payments[paymentID] = &Payment{
		ID:       paymentID,
		OrderID:  orderID,
		Amount:   amount,
		Currency: order.Currency,
		Status:   StatusCaptured,
		Method:   method,
	}
	order.Status = "paid"
	return paymentID, Sign(f.Secret, orderID, paymentID), nil
}
