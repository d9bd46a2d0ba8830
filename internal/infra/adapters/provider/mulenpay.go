// File: internal/infra/adapters/provider/mulenpay.go
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*MulenPay)(nil)

// MulenPay uses a bearer api key on requests plus a sha1 sign of
// currency+amount+shop id+secret, recomputed to verify callbacks.
type MulenPay struct {
	shopID    string
	apiKey    string
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewMulenPay(shopID, apiKey, secretKey string) (*MulenPay, error) {
	if shopID == "" || apiKey == "" || secretKey == "" {
		return nil, errors.New("mulenpay: shop_id, api_key and secret_key required")
	}
	return &MulenPay{
		shopID:    shopID,
		apiKey:    apiKey,
		secretKey: secretKey,
		baseURL:   "https://mulenpay.ru/api/v2",
		client:    newHTTPClient(),
	}, nil
}

func (m *MulenPay) Name() model.Provider { return model.ProviderMulenPay }

func (m *MulenPay) sign(amount string) string {
	return sha1Hex("rub" + amount + m.shopID + m.secretKey)
}

func (m *MulenPay) CreateInvoice(ctx context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if inv.Currency != model.CurrencyRUB {
		return adapter.Invoice{}, fmt.Errorf("%w: mulenpay settles RUB only", domain.ErrUnsupportedCurrency)
	}
	amount := formatMajor(inv.Amount)
	shopID, err := strconv.Atoi(m.shopID)
	if err != nil {
		return adapter.Invoice{}, fmt.Errorf("mulenpay: numeric shop_id expected: %w", err)
	}
	payload := map[string]any{
		"currency":    "rub",
		"amount":      amount,
		"uuid":        inv.OrderID,
		"shopId":      shopID,
		"description": inv.Description,
		"sign":        m.sign(amount),
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/payments", bytes.NewReader(b))
	if err != nil {
		return adapter.Invoice{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return adapter.Invoice{}, err
	}
	defer resp.Body.Close()

	var out struct {
		Success    bool   `json:"success"`
		PaymentURL string `json:"paymentUrl"`
		ID         int64  `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.Invoice{}, err
	}
	if !out.Success || out.PaymentURL == "" {
		return adapter.Invoice{}, fmt.Errorf("mulenpay create failed: http %d", resp.StatusCode)
	}
	return adapter.Invoice{PaymentURL: out.PaymentURL, ProviderRef: strconv.FormatInt(out.ID, 10)}, nil
}

func (m *MulenPay) ParseWebhook(body []byte, _ http.Header) (adapter.WebhookEvent, error) {
	var in struct {
		ID     int64  `json:"id"`
		UUID   string `json:"uuid"`
		Amount string `json:"amount"`
		Status string `json:"status"`
		Sign   string `json:"sign"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}
	if in.Sign == "" || in.Sign != m.sign(in.Amount) {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: sign mismatch", domain.ErrBadWebhook)
	}
	return adapter.WebhookEvent{
		OrderID:     in.UUID,
		ProviderRef: strconv.FormatInt(in.ID, 10),
		RawStatus:   in.Status,
		Paid:        in.Status == "success",
	}, nil
}

func (m *MulenPay) AckBody(_ adapter.WebhookEvent) string { return "" }
