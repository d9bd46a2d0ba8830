// File: internal/infra/adapters/remnawave/client.go
package remnawave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

var _ adapter.EntitlementClient = (*Client)(nil)

// Client talks to the Remnawave control plane's user API. The panel
// never owns entitlement state: it reads, computes, and patches.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	if baseURL == "" || token == "" {
		return nil, errors.New("remnawave: base_url and token required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type userResponse struct {
	Response struct {
		UUID              string    `json:"uuid"`
		ExpireAt          time.Time `json:"expireAt"`
		ActiveSquads      []string  `json:"activeInternalSquads"`
		TrafficLimitBytes int64     `json:"trafficLimitBytes"`
	} `json:"response"`
}

func (c *Client) Get(ctx context.Context, externalID string) (model.Entitlement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/users/"+externalID, nil)
	if err != nil {
		return model.Entitlement{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return model.Entitlement{}, fmt.Errorf("%w: %v", domain.ErrEntitlementSync, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return model.Entitlement{}, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return model.Entitlement{}, fmt.Errorf("%w: get http %d", domain.ErrEntitlementSync, resp.StatusCode)
	}

	var out userResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Entitlement{}, fmt.Errorf("%w: %v", domain.ErrEntitlementSync, err)
	}
	return model.Entitlement{
		ExternalID:        out.Response.UUID,
		ExpiresAt:         out.Response.ExpireAt,
		SquadIDs:          out.Response.ActiveSquads,
		TrafficLimitBytes: out.Response.TrafficLimitBytes,
	}, nil
}

func (c *Client) Patch(ctx context.Context, patch adapter.EntitlementPatch) error {
	payload := map[string]any{
		"uuid":                 patch.ExternalID,
		"expireAt":             patch.ExpiresAt.UTC().Format(time.RFC3339),
		"activeInternalSquads": patch.SquadIDs,
	}
	if patch.TrafficLimitBytes != nil {
		payload["trafficLimitBytes"] = *patch.TrafficLimitBytes
		payload["trafficLimitStrategy"] = patch.TrafficLimitStrategy
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/api/users", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEntitlementSync, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: patch http %d", domain.ErrEntitlementSync, resp.StatusCode)
	}
	return nil
}
