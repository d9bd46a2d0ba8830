// File: internal/infra/adapters/provider/crystalpay.go
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

var _ adapter.PaymentProvider = (*CrystalPay)(nil)

// CrystalPay authenticates with a login/secret pair in the request body
// and signs callbacks with sha1(invoice id + ":" + salt).
type CrystalPay struct {
	login   string
	secret  string
	salt    string
	baseURL string
	client  *http.Client
}

func NewCrystalPay(login, secret, salt string) (*CrystalPay, error) {
	if login == "" || secret == "" || salt == "" {
		return nil, errors.New("crystalpay: login, secret and salt required")
	}
	return &CrystalPay{
		login:   login,
		secret:  secret,
		salt:    salt,
		baseURL: "https://api.crystalpay.io/v3",
		client:  newHTTPClient(),
	}, nil
}

func (c *CrystalPay) Name() model.Provider { return model.ProviderCrystalPay }

func (c *CrystalPay) CreateInvoice(ctx context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if inv.Currency != model.CurrencyRUB {
		return adapter.Invoice{}, fmt.Errorf("%w: crystalpay settles RUB only", domain.ErrUnsupportedCurrency)
	}
	payload := map[string]any{
		"auth_login":   c.login,
		"auth_secret":  c.secret,
		"amount":       formatMajor(inv.Amount),
		"type":         "purchase",
		"lifetime":     1440, // minutes
		"extra":        inv.OrderID,
		"redirect_url": inv.ReturnURL,
		"callback_url": inv.CallbackURL,
		"description":  inv.Description,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoice/create/", bytes.NewReader(b))
	if err != nil {
		return adapter.Invoice{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return adapter.Invoice{}, err
	}
	defer resp.Body.Close()

	var out struct {
		Error  bool     `json:"error"`
		Errors []string `json:"errors"`
		ID     string   `json:"id"`
		URL    string   `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.Invoice{}, err
	}
	if out.Error || out.ID == "" || out.URL == "" {
		return adapter.Invoice{}, fmt.Errorf("crystalpay create failed: %v", out.Errors)
	}
	return adapter.Invoice{PaymentURL: out.URL, ProviderRef: out.ID}, nil
}

func (c *CrystalPay) ParseWebhook(body []byte, _ http.Header) (adapter.WebhookEvent, error) {
	var in struct {
		ID        string `json:"id"`
		State     string `json:"state"`
		Extra     string `json:"extra"`
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}
	if in.ID == "" || in.Signature == "" {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: missing id or signature", domain.ErrBadWebhook)
	}
	if sha1Hex(in.ID+":"+c.salt) != in.Signature {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: signature mismatch", domain.ErrBadWebhook)
	}
	return adapter.WebhookEvent{
		OrderID:     in.Extra,
		ProviderRef: in.ID,
		RawStatus:   in.State,
		Paid:        in.State == "payed",
	}, nil
}

func (c *CrystalPay) AckBody(_ adapter.WebhookEvent) string { return "" }
