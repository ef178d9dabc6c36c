package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/varejotech/balcao/internal/config"
)

const defaultTimeout = 15 * time.Second

// AsaasProvider talks to the Asaas REST API. Only the subset of the API
// the tenant lifecycle needs is implemented.
type AsaasProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *zap.Logger
}

func NewAsaasProvider(cfg config.Config, log *zap.Logger) *AsaasProvider {
	return &AsaasProvider{
		baseURL: cfg.BillingBaseURL,
		apiKey:  cfg.BillingAPIKey,
		client:  &http.Client{Timeout: defaultTimeout},
		log:     log.Named("billing.asaas"),
	}
}

type asaasCustomer struct {
	ID string `json:"id"`
}

type asaasSubscription struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	NextDueDate string `json:"nextDueDate"`
}

type asaasPayment struct {
	Value       float64 `json:"value"`
	Status      string  `json:"status"`
	DueDate     string  `json:"dueDate"`
	PaymentDate string  `json:"paymentDate"`
	InvoiceURL  string  `json:"invoiceUrl"`
}

type asaasList[T any] struct {
	Data []T `json:"data"`
}

type asaasError struct {
	Errors []struct {
		Description string `json:"description"`
	} `json:"errors"`
}

func (p *AsaasProvider) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	body := map[string]string{
		"name":        req.Name,
		"cpfCnpj":     req.TaxID,
		"email":       req.Email,
		"mobilePhone": req.Phone,
	}
	var out asaasCustomer
	if err := p.do(ctx, http.MethodPost, "/customers", body, &out); err != nil {
		return nil, err
	}
	return &Customer{ID: out.ID}, nil
}

func (p *AsaasProvider) CreateSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	body := map[string]any{
		"customer":    customerID,
		"billingType": "UNDEFINED",
		"cycle":       "MONTHLY",
	}
	var out asaasSubscription
	if err := p.do(ctx, http.MethodPost, "/subscriptions", body, &out); err != nil {
		return nil, err
	}
	sub := &Subscription{ID: out.ID, Status: SubscriptionStatus(out.Status)}
	if due, err := time.Parse("2006-01-02", out.NextDueDate); err == nil {
		sub.DueDate = due
	}
	return sub, nil
}

func (p *AsaasProvider) GetSubscriptionStatus(ctx context.Context, subscriptionID string) (SubscriptionStatus, error) {
	var out asaasSubscription
	if err := p.do(ctx, http.MethodGet, "/subscriptions/"+url.PathEscape(subscriptionID), nil, &out); err != nil {
		return "", err
	}
	// Asaas keeps the subscription ACTIVE while individual payments carry
	// the collection state. Prefer the latest payment status when present.
	payments, err := p.listPayments(ctx, subscriptionID)
	if err != nil {
		return "", err
	}
	if len(payments) > 0 {
		return SubscriptionStatus(payments[0].Status), nil
	}
	return SubscriptionStatus(out.Status), nil
}

func (p *AsaasProvider) GetPendingInvoice(ctx context.Context, subscriptionID string) (*Invoice, error) {
	payments, err := p.listPayments(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	for _, pay := range payments {
		if pay.Status == "PENDING" || pay.Status == "OVERDUE" {
			inv := &Invoice{Value: pay.Value, InvoiceURL: pay.InvoiceURL, Status: pay.Status}
			if due, err := time.Parse("2006-01-02", pay.DueDate); err == nil {
				inv.DueDate = due
			}
			return inv, nil
		}
	}
	return nil, nil
}

func (p *AsaasProvider) ListPayments(ctx context.Context, subscriptionID string) ([]Payment, error) {
	raw, err := p.listPayments(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	out := make([]Payment, 0, len(raw))
	for _, pay := range raw {
		item := Payment{Value: pay.Value, Status: pay.Status, InvoiceURL: pay.InvoiceURL}
		if due, err := time.Parse("2006-01-02", pay.DueDate); err == nil {
			item.DueDate = due
		}
		if pay.PaymentDate != "" {
			if paid, err := time.Parse("2006-01-02", pay.PaymentDate); err == nil {
				item.PaymentDate = &paid
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (p *AsaasProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	return p.do(ctx, http.MethodDelete, "/subscriptions/"+url.PathEscape(subscriptionID), nil, nil)
}

func (p *AsaasProvider) listPayments(ctx context.Context, subscriptionID string) ([]asaasPayment, error) {
	var out asaasList[asaasPayment]
	path := "/subscriptions/" + url.PathEscape(subscriptionID) + "/payments"
	if err := p.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (p *AsaasProvider) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("billing: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("billing: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("billing: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		perr := &Error{Operation: method + " " + path, Status: resp.StatusCode}
		var apiErr asaasError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && len(apiErr.Errors) > 0 {
			perr.Message = apiErr.Errors[0].Description
		}
		p.log.Warn("provider call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", perr.Message),
		)
		return perr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("billing: decode response: %w", err)
	}
	return nil
}
