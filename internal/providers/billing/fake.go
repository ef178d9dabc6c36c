package billing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fake is an in-memory Provider for tests and local development. Statuses
// can be pinned per subscription; calls are recorded.
type Fake struct {
	mu sync.Mutex

	nextCustomer     int
	nextSubscription int

	Statuses map[string]SubscriptionStatus
	Invoices map[string]*Invoice
	Payments map[string][]Payment

	Cancelled []string
	Calls     []string

	FailCreateCustomer     error
	FailCreateSubscription error
	FailCancel             error
	FailStatus             error
}

func NewFake() *Fake {
	return &Fake{
		Statuses: make(map[string]SubscriptionStatus),
		Invoices: make(map[string]*Invoice),
		Payments: make(map[string][]Payment),
	}
}

func (f *Fake) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CreateCustomer")
	if f.FailCreateCustomer != nil {
		return nil, f.FailCreateCustomer
	}
	f.nextCustomer++
	return &Customer{ID: fmt.Sprintf("cus_%06d", f.nextCustomer)}, nil
}

func (f *Fake) CreateSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CreateSubscription")
	if f.FailCreateSubscription != nil {
		return nil, f.FailCreateSubscription
	}
	f.nextSubscription++
	id := fmt.Sprintf("sub_%06d", f.nextSubscription)
	f.Statuses[id] = SubscriptionActive
	return &Subscription{ID: id, Status: SubscriptionActive, DueDate: time.Now().AddDate(0, 1, 0)}, nil
}

func (f *Fake) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (SubscriptionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "GetSubscriptionStatus")
	if f.FailStatus != nil {
		return "", f.FailStatus
	}
	status, ok := f.Statuses[subscriptionID]
	if !ok {
		return "", &Error{Operation: "GetSubscriptionStatus", Message: "subscription not found", Status: 404}
	}
	return status, nil
}

func (f *Fake) GetPendingInvoice(ctx context.Context, subscriptionID string) (*Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "GetPendingInvoice")
	return f.Invoices[subscriptionID], nil
}

func (f *Fake) ListPayments(ctx context.Context, subscriptionID string) ([]Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "ListPayments")
	return f.Payments[subscriptionID], nil
}

func (f *Fake) CancelSubscription(ctx context.Context, subscriptionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CancelSubscription")
	if f.FailCancel != nil {
		return f.FailCancel
	}
	f.Cancelled = append(f.Cancelled, subscriptionID)
	f.Statuses[subscriptionID] = SubscriptionCancelled
	return nil
}
