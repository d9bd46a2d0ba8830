// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/infra/metrics"
)

// ProviderResolver selects a payment adapter by enum. Satisfied by the
// infra registry; the engine never branches on provider identity itself.
type ProviderResolver interface {
	Get(name model.Provider) (adapter.PaymentProvider, error)
}

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

type CheckoutUseCase interface {
	// CreateOrder prices the tariff for the user, creates the remote
	// invoice and persists a pending order. Returns the order and the
	// URL to redirect the user to.
	CreateOrder(ctx context.Context, userID, tariffID string, providerName model.Provider, promoCode string) (*model.PaymentOrder, string, error)
	// PreviewPromo validates a promo for display without consuming it.
	PreviewPromo(ctx context.Context, code string) (*model.PromoCode, error)
}

type checkoutUC struct {
	orders    repository.OrderRepository
	tariffs   repository.TariffRepository
	users     repository.UserRepository
	promos    repository.PromoRepository
	providers ProviderResolver
	publicURL string
	returnURL string
	log       *zerolog.Logger
}

func NewCheckoutUseCase(
	orders repository.OrderRepository,
	tariffs repository.TariffRepository,
	users repository.UserRepository,
	promos repository.PromoRepository,
	providers ProviderResolver,
	publicURL, returnURL string,
	logger *zerolog.Logger,
) *checkoutUC {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &checkoutUC{
		orders:    orders,
		tariffs:   tariffs,
		users:     users,
		promos:    promos,
		providers: providers,
		publicURL: publicURL,
		returnURL: returnURL,
		log:       &l,
	}
}

func (u *checkoutUC) CreateOrder(ctx context.Context, userID, tariffID string, providerName model.Provider, promoCode string) (*model.PaymentOrder, string, error) {
	prov, err := u.providers.Get(providerName)
	if err != nil {
		return nil, "", err
	}
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	tariff, err := u.tariffs.FindByID(ctx, nil, tariffID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrTariffNotFound, tariffID)
	}

	amount, ok := tariff.Price(user.PreferredCurrency)
	if !ok {
		return nil, "", fmt.Errorf("%w: tariff %s has no %s price", domain.ErrUnsupportedCurrency, tariff.ID, user.PreferredCurrency)
	}

	// Price is computed once here and never again; the promo is only
	// remembered on the order, consumption happens at settlement.
	var promoID *string
	if promoCode != "" {
		promo, err := u.promos.FindByCode(ctx, nil, promoCode)
		if err != nil {
			return nil, "", domain.ErrPromoNotFound
		}
		if promo.Kind == model.PromoKindDays {
			return nil, "", domain.ErrPromoNotPayable
		}
		if promo.UsesLeft <= 0 {
			return nil, "", domain.ErrPromoExhausted
		}
		amount = promo.Discount(amount)
		promoID = &promo.ID
	}

	now := time.Now()
	orderID := model.NewOrderID(user.ID, tariff.ID, now)

	inv, err := prov.CreateInvoice(ctx, adapter.InvoiceRequest{
		OrderID:     orderID,
		Amount:      amount,
		Currency:    user.PreferredCurrency,
		ReturnURL:   u.returnURL,
		CallbackURL: fmt.Sprintf("%s/webhook/%s", u.publicURL, providerName),
		Description: tariff.Name,
	})
	if err != nil {
		// No pending order may exist without a remote invoice.
		u.log.Warn().Err(err).Str("provider", string(providerName)).Str("order_id", orderID).Msg("invoice creation failed")
		return nil, "", err
	}

	order := &model.PaymentOrder{
		ID:          orderID,
		UserID:      user.ID,
		TariffID:    tariff.ID,
		Provider:    providerName,
		ProviderRef: inv.ProviderRef,
		Amount:      amount,
		Currency:    user.PreferredCurrency,
		PromoCodeID: promoID,
		Status:      model.OrderStatusPending,
		CreatedAt:   now,
	}
	if err := u.orders.Save(ctx, nil, order); err != nil {
		u.log.Error().Err(err).Str("order_id", orderID).Str("provider_ref", inv.ProviderRef).Msg("order persist failed after invoice creation")
		return nil, "", fmt.Errorf("save order: %w", err)
	}

	metrics.IncOrder(string(providerName), "created")
	u.log.Info().Str("order_id", orderID).Str("provider", string(providerName)).Int64("amount", amount).Str("currency", string(user.PreferredCurrency)).Msg("order created")
	return order, inv.PaymentURL, nil
}

func (u *checkoutUC) PreviewPromo(ctx context.Context, code string) (*model.PromoCode, error) {
	promo, err := u.promos.FindByCode(ctx, nil, code)
	if err != nil {
		return nil, domain.ErrPromoNotFound
	}
	if promo.UsesLeft <= 0 {
		return nil, domain.ErrPromoExhausted
	}
	return promo, nil
}
