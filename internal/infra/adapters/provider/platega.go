// File: internal/infra/adapters/provider/platega.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*Platega)(nil)

// Platega authenticates both directions with the X-MerchantId/X-Secret
// header pair: we send it on create, and callbacks must echo it back.
type Platega struct {
	merchantID string
	secret     string
	baseURL    string
	client     *http.Client
}

func NewPlatega(merchantID, secret string) (*Platega, error) {
	if merchantID == "" || secret == "" {
		return nil, errors.New("platega: merchant_id and secret required")
	}
	return &Platega{
		merchantID: merchantID,
		secret:     secret,
		baseURL:    "https://app.platega.io",
		client:     newHTTPClient(),
	}, nil
}

func (p *Platega) Name() model.Provider { return model.ProviderPlatega }

func (p *Platega) CreateInvoice(ctx context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if inv.Currency != model.CurrencyRUB {
		return adapter.Invoice{}, fmt.Errorf("%w: platega settles RUB only", domain.ErrUnsupportedCurrency)
	}
	payload := map[string]any{
		"paymentMethod": 2, // SBP
		"paymentDetails": map[string]any{
			"amount":   formatMajor(inv.Amount),
			"currency": string(inv.Currency),
		},
		"description": inv.Description,
		"return":      inv.ReturnURL,
		"failedUrl":   inv.ReturnURL,
		"payload":     inv.OrderID,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transaction/process", bytes.NewReader(b))
	if err != nil {
		return adapter.Invoice{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-MerchantId", p.merchantID)
	req.Header.Set("X-Secret", p.secret)

	resp, err := p.client.Do(req)
	if err != nil {
		return adapter.Invoice{}, err
	}
	defer resp.Body.Close()

	var out struct {
		TransactionID string `json:"transactionId"`
		Redirect      string `json:"redirect"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.Invoice{}, err
	}
	if resp.StatusCode != http.StatusOK || out.Redirect == "" {
		return adapter.Invoice{}, fmt.Errorf("platega create failed: http %d", resp.StatusCode)
	}
	return adapter.Invoice{PaymentURL: out.Redirect, ProviderRef: out.TransactionID}, nil
}

func (p *Platega) ParseWebhook(body []byte, header http.Header) (adapter.WebhookEvent, error) {
	if header.Get("X-MerchantId") != p.merchantID || header.Get("X-Secret") != p.secret {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: merchant credentials mismatch", domain.ErrBadWebhook)
	}
	var in struct {
		TransactionID string `json:"transactionId"`
		Status        string `json:"status"`
		Payload       string `json:"payload"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}
	if in.TransactionID == "" {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: missing transactionId", domain.ErrBadWebhook)
	}
	return adapter.WebhookEvent{
		OrderID:     in.Payload,
		ProviderRef: in.TransactionID,
		RawStatus:   in.Status,
		Paid:        in.Status == "CONFIRMED",
	}, nil
}

func (p *Platega) AckBody(_ adapter.WebhookEvent) string { return "" }
