//go:build !integration

package remnawave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

func TestClient_Get(t *testing.T) {
	t.Run("should fetch and map a user", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/users/rw-1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Header.Get("Authorization") != "Bearer token-1" {
				t.Error("expected a bearer token")
			}
			fmt.Fprint(w, `{"response":{"uuid":"rw-1","expireAt":"2026-01-15T00:00:00Z","activeInternalSquads":["squad-a"],"trafficLimitBytes":1024}}`)
		}))
		defer srv.Close()

		c, err := NewClient(srv.URL, "token-1", time.Second)
		if err != nil {
			t.Fatal(err)
		}
		ent, err := c.Get(context.Background(), "rw-1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if ent.ExternalID != "rw-1" || ent.TrafficLimitBytes != 1024 {
			t.Errorf("unexpected entitlement: %+v", ent)
		}
		want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		if !ent.ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, but got %v", want, ent.ExpiresAt)
		}
	})

	t.Run("should map 404 to ErrNotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c, _ := NewClient(srv.URL, "token-1", time.Second)
		if _, err := c.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, but got %v", err)
		}
	})

	t.Run("should wrap other failures as sync errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c, _ := NewClient(srv.URL, "token-1", time.Second)
		if _, err := c.Get(context.Background(), "rw-1"); !errors.Is(err, domain.ErrEntitlementSync) {
			t.Errorf("expected ErrEntitlementSync, but got %v", err)
		}
	})
}

func TestClient_Patch(t *testing.T) {
	t.Run("should send the expiry, squads and limit", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPatch || r.URL.Path != "/api/users" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c, _ := NewClient(srv.URL, "token-1", time.Second)
		limit := int64(2048)
		err := c.Patch(context.Background(), adapter.EntitlementPatch{
			ExternalID:           "rw-1",
			ExpiresAt:            time.Date(2026, 2, 1, 12, 30, 0, 0, time.UTC),
			SquadIDs:             []string{"squad-a"},
			TrafficLimitBytes:    &limit,
			TrafficLimitStrategy: "NO_RESET",
		})
		if err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if got["uuid"] != "rw-1" {
			t.Errorf("unexpected uuid: %v", got["uuid"])
		}
		if got["expireAt"] != "2026-02-01T12:30:00Z" {
			t.Errorf("unexpected expireAt: %v", got["expireAt"])
		}
		if got["trafficLimitStrategy"] != "NO_RESET" {
			t.Errorf("unexpected strategy: %v", got["trafficLimitStrategy"])
		}
	})

	t.Run("should omit the traffic limit when nil", func(t *testing.T) {
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		c, _ := NewClient(srv.URL, "token-1", time.Second)
		err := c.Patch(context.Background(), adapter.EntitlementPatch{
			ExternalID: "rw-1",
			ExpiresAt:  time.Now(),
		})
		if err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if _, ok := got["trafficLimitBytes"]; ok {
			t.Error("expected trafficLimitBytes to be omitted")
		}
	})

	t.Run("should report non-2xx as a sync error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c, _ := NewClient(srv.URL, "token-1", time.Second)
		err := c.Patch(context.Background(), adapter.EntitlementPatch{ExternalID: "rw-1", ExpiresAt: time.Now()})
		if !errors.Is(err, domain.ErrEntitlementSync) {
			t.Errorf("expected ErrEntitlementSync, but got %v", err)
		}
	})
}
