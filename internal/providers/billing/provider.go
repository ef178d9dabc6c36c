// Package billing is the boundary to the external subscription provider.
// Everything the application knows about invoicing and payment collection
// lives on the provider side; locally we only hold the references.
package billing

import (
	"context"
	"fmt"
	"time"
)

// SubscriptionStatus is the provider's own status vocabulary.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionReceived  SubscriptionStatus = "RECEIVED"
	SubscriptionConfirmed SubscriptionStatus = "CONFIRMED"
	SubscriptionOverdue   SubscriptionStatus = "OVERDUE"
	SubscriptionInactive  SubscriptionStatus = "INACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

type Customer struct {
	ID string
}

type Subscription struct {
	ID      string
	Status  SubscriptionStatus
	DueDate time.Time
}

type Invoice struct {
	Value      float64   `json:"value"`
	DueDate    time.Time `json:"dueDate"`
	InvoiceURL string    `json:"invoiceUrl"`
	Status     string    `json:"status"`
}

type Payment struct {
	Value       float64    `json:"value"`
	Status      string     `json:"status"`
	DueDate     time.Time  `json:"dueDate"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`
	InvoiceURL  string     `json:"invoiceUrl,omitempty"`
}

type CreateCustomerRequest struct {
	Name  string
	TaxID string
	Email string
	Phone string
}

type Provider interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	CreateSubscription(ctx context.Context, customerID string) (*Subscription, error)
	GetSubscriptionStatus(ctx context.Context, subscriptionID string) (SubscriptionStatus, error)
	GetPendingInvoice(ctx context.Context, subscriptionID string) (*Invoice, error)
	ListPayments(ctx context.Context, subscriptionID string) ([]Payment, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

// Error wraps a provider-side failure so callers can pass the provider's
// message through while keeping it distinguishable from internal errors.
type Error struct {
	Operation string
	Message   string
	Status    int
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("billing provider: %s failed (http %d)", e.Operation, e.Status)
	}
	return fmt.Sprintf("billing provider: %s: %s", e.Operation, e.Message)
}
