package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/logging"
)

const maxWebhookBody = 1 << 20 // 1 MiB

type createOrderRequest struct {
	TariffID  string `json:"tariff_id"`
	Provider  string `json:"provider"`
	PromoCode string `json:"promo_code,omitempty"`
}

type createOrderResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID, ok := UserIDFrom(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TariffID == "" || req.Provider == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "tariff_id and provider are required"})
		return
	}

	order, payURL, err := s.checkout.CreateOrder(ctx, userID, req.TariffID, model.Provider(req.Provider), req.PromoCode)
	if err != nil {
		status := http.StatusBadGateway // provider-side failure by default
		switch {
		case errors.Is(err, domain.ErrUnknownProvider),
			errors.Is(err, domain.ErrTariffNotFound),
			errors.Is(err, domain.ErrUnsupportedCurrency),
			errors.Is(err, domain.ErrPromoNotFound),
			errors.Is(err, domain.ErrPromoExhausted),
			errors.Is(err, domain.ErrPromoNotPayable):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, createOrderResponse{OrderID: order.ID, PaymentURL: payURL})
}

func (s *Server) handlePreviewPromo(w http.ResponseWriter, r *http.Request) {
	promo, err := s.checkout.PreviewPromo(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"kind":      promo.Kind,
		"value":     promo.Value,
		"uses_left": promo.UsesLeft,
	})
}

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ent, err := s.status.Subscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no subscription"})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expires_at":          ent.ExpiresAt.UTC().Format(time.RFC3339),
		"active":              ent.ExpiresAt.After(time.Now()),
		"squads":              ent.SquadIDs,
		"traffic_limit_bytes": ent.TrafficLimitBytes,
	})
}

// handleWebhook answers providers per the settlement contract: 200 for
// anything handled or safely ignorable, 502 when the entitlement patch
// failed and a redelivery can still complete the order.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	providerName := model.Provider(chi.URLParam(r, "provider"))
	ctx = logging.WithProvider(ctx, string(providerName))
	log := logging.With(ctx, s.log)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	res, err := s.settle.Settle(ctx, providerName, body, r.Header)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBadWebhook):
			// Providers must not retry forever on payloads we cannot
			// parse; settle already logged and counted it.
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case errors.Is(err, domain.ErrUnknownProvider):
			http.Error(w, "unknown provider", http.StatusNotFound)
		case errors.Is(err, domain.ErrEntitlementSync):
			log.Error().Err(err).Msg("settlement aborted; asking provider to redeliver")
			http.Error(w, "upstream sync failed", http.StatusBadGateway)
		default:
			log.Error().Err(err).Msg("settlement failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	ack := res.AckBody
	if ack == "" {
		ack = "OK"
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ack))
}
