// File: internal/infra/adapters/provider/heleket.go
package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.PaymentProvider = (*Heleket)(nil)

// Heleket accepts crypto against a USD-denominated invoice. Requests
// and callbacks carry an md5 sign over base64(body)+api key.
type Heleket struct {
	merchant string
	apiKey   string
	baseURL  string
	client   *http.Client
}

func NewHeleket(merchant, apiKey string) (*Heleket, error) {
	if merchant == "" || apiKey == "" {
		return nil, errors.New("heleket: merchant and api_key required")
	}
	return &Heleket{
		merchant: merchant,
		apiKey:   apiKey,
		baseURL:  "https://api.heleket.com/v1",
		client:   newHTTPClient(),
	}, nil
}

func (h *Heleket) Name() model.Provider { return model.ProviderHeleket }

func (h *Heleket) sign(body []byte) string {
	return md5Hex(base64.StdEncoding.EncodeToString(body) + h.apiKey)
}

func (h *Heleket) CreateInvoice(ctx context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if inv.Currency != model.CurrencyUSD {
		return adapter.Invoice{}, fmt.Errorf("%w: heleket invoices are USD-denominated", domain.ErrUnsupportedCurrency)
	}
	payload := map[string]any{
		"amount":       formatMajor(inv.Amount),
		"currency":     string(inv.Currency),
		"order_id":     inv.OrderID,
		"url_return":   inv.ReturnURL,
		"url_callback": inv.CallbackURL,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/payment", bytes.NewReader(b))
	if err != nil {
		return adapter.Invoice{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("merchant", h.merchant)
	req.Header.Set("sign", h.sign(b))

	resp, err := h.client.Do(req)
	if err != nil {
		return adapter.Invoice{}, err
	}
	defer resp.Body.Close()

	var out struct {
		State  int `json:"state"`
		Result struct {
			UUID string `json:"uuid"`
			URL  string `json:"url"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return adapter.Invoice{}, err
	}
	if out.State != 0 || out.Result.URL == "" {
		return adapter.Invoice{}, fmt.Errorf("heleket create failed: state %d", out.State)
	}
	return adapter.Invoice{PaymentURL: out.Result.URL, ProviderRef: out.Result.UUID}, nil
}

func (h *Heleket) ParseWebhook(body []byte, _ http.Header) (adapter.WebhookEvent, error) {
	var in struct {
		UUID    string `json:"uuid"`
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
		Sign    string `json:"sign"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: %v", domain.ErrBadWebhook, err)
	}
	if in.Sign == "" {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: missing sign", domain.ErrBadWebhook)
	}
	// The sign covers the body exactly as the provider serialized it,
	// minus the sign member. Strip it from the raw bytes so the
	// provider's own field order survives; a sorted re-marshal would
	// produce a different digest.
	unsigned := bytes.Replace(body, []byte(`,"sign":"`+in.Sign+`"`), nil, 1)
	if bytes.Equal(unsigned, body) {
		unsigned = bytes.Replace(body, []byte(`"sign":"`+in.Sign+`",`), nil, 1)
	}
	if bytes.Equal(unsigned, body) || h.sign(unsigned) != in.Sign {
		return adapter.WebhookEvent{}, fmt.Errorf("%w: sign mismatch", domain.ErrBadWebhook)
	}

	return adapter.WebhookEvent{
		OrderID:     in.OrderID,
		ProviderRef: in.UUID,
		RawStatus:   in.Status,
		Paid:        in.Status == "paid" || in.Status == "paid_over",
	}, nil
}

func (h *Heleket) AckBody(_ adapter.WebhookEvent) string { return "" }
