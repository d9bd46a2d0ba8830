//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock OrderRepository ----

type MockOrderRepo struct {
	mu     sync.RWMutex
	orders map[string]*model.PaymentOrder

	SaveFunc              func(ctx context.Context, tx repository.Tx, o *model.PaymentOrder) error
	MarkPaidIfPendingFunc func(ctx context.Context, tx repository.Tx, id string, paidAt time.Time) (bool, error)
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: make(map[string]*model.PaymentOrder)}
}

func (m *MockOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.PaymentOrder) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PaymentOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) FindByProviderRef(ctx context.Context, tx repository.Tx, provider model.Provider, ref string) (*model.PaymentOrder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.Provider == provider && o.ProviderRef == ref {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// MarkPaidIfPending mirrors the real conditional UPDATE: the transition
// happens only when the stored order is still pending.
func (m *MockOrderRepo) MarkPaidIfPending(ctx context.Context, tx repository.Tx, id string, paidAt time.Time) (bool, error) {
	if m.MarkPaidIfPendingFunc != nil {
		return m.MarkPaidIfPendingFunc(ctx, tx, id, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusPaid
	t := paidAt
	o.PaidAt = &t
	return true, nil
}

func (m *MockOrderRepo) SetTelegramMessageID(ctx context.Context, tx repository.Tx, id string, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.TelegramMessageID = &messageID
	return nil
}

func (m *MockOrderRepo) ExpirePendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.orders {
		if o.Status == model.OrderStatusPending && o.CreatedAt.Before(cutoff) {
			o.Status = model.OrderStatusExpired
			n++
		}
	}
	return n, nil
}

// get returns the stored order without copying; test-side inspection only.
func (m *MockOrderRepo) get(id string) *model.PaymentOrder {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

// ---- Mock PromoRepository ----

type MockPromoRepo struct {
	mu     sync.RWMutex
	promos map[string]*model.PromoCode

	ConsumeIfAvailableFunc func(ctx context.Context, tx repository.Tx, id string) (bool, error)
}

var _ repository.PromoRepository = (*MockPromoRepo)(nil)

func NewMockPromoRepo() *MockPromoRepo {
	return &MockPromoRepo{promos: make(map[string]*model.PromoCode)}
}

func (m *MockPromoRepo) put(p *model.PromoCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.promos[p.ID] = &cp
}

func (m *MockPromoRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.promos {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPromoRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.PromoCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.promos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPromoRepo) ConsumeIfAvailable(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	if m.ConsumeIfAvailableFunc != nil {
		return m.ConsumeIfAvailableFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promos[id]
	if !ok || p.UsesLeft <= 0 {
		return false, nil
	}
	p.UsesLeft--
	return true, nil
}

func (m *MockPromoRepo) usesLeft(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.promos[id]; ok {
		return p.UsesLeft
	}
	return -1
}

// ---- Mock TariffRepository ----

type MockTariffRepo struct {
	mu      sync.RWMutex
	tariffs map[string]*model.Tariff
}

var _ repository.TariffRepository = (*MockTariffRepo)(nil)

func NewMockTariffRepo() *MockTariffRepo {
	return &MockTariffRepo{tariffs: make(map[string]*model.Tariff)}
}

func (m *MockTariffRepo) put(t *model.Tariff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tariffs[t.ID] = &cp
}

func (m *MockTariffRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tariffs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTariffRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Tariff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Tariff, 0, len(m.tariffs))
	for _, t := range m.tariffs {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[string]*model.User)}
}

func (m *MockUserRepo) put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ---- Mock TransactionManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

// WithTx runs the function immediately without a real transaction. Tests
// that need to observe rollback semantics assign WithTxFunc.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentProvider + resolver ----

type MockProvider struct {
	ProviderName model.Provider

	CreateInvoiceFunc func(ctx context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error)
	ParseWebhookFunc  func(body []byte, header http.Header) (adapter.WebhookEvent, error)
	AckBodyFunc       func(ev adapter.WebhookEvent) string
}

var _ adapter.PaymentProvider = (*MockProvider)(nil)

func (m *MockProvider) Name() model.Provider {
	if m.ProviderName == "" {
		return model.ProviderYooKassa
	}
	return m.ProviderName
}

func (m *MockProvider) CreateInvoice(ctx context.Context, inv adapter.InvoiceRequest) (adapter.Invoice, error) {
	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, inv)
	}
	return adapter.Invoice{PaymentURL: "https://pay.example/" + inv.OrderID, ProviderRef: "ref-" + inv.OrderID}, nil
}

func (m *MockProvider) ParseWebhook(body []byte, header http.Header) (adapter.WebhookEvent, error) {
	if m.ParseWebhookFunc != nil {
		return m.ParseWebhookFunc(body, header)
	}
	return adapter.WebhookEvent{Paid: true}, nil
}

func (m *MockProvider) AckBody(ev adapter.WebhookEvent) string {
	if m.AckBodyFunc != nil {
		return m.AckBodyFunc(ev)
	}
	return "OK"
}

// MockResolver hands out one provider for every name, mirroring how the
// registry is consulted by both use cases.
type MockResolver struct {
	Provider *MockProvider
	GetFunc  func(name model.Provider) (adapter.PaymentProvider, error)
}

func (m *MockResolver) Get(name model.Provider) (adapter.PaymentProvider, error) {
	if m.GetFunc != nil {
		return m.GetFunc(name)
	}
	return m.Provider, nil
}

// ---- Mock EntitlementClient ----

type MockEntitlementClient struct {
	mu      sync.Mutex
	Patches []adapter.EntitlementPatch

	GetFunc   func(ctx context.Context, externalID string) (model.Entitlement, error)
	PatchFunc func(ctx context.Context, patch adapter.EntitlementPatch) error
}

var _ adapter.EntitlementClient = (*MockEntitlementClient)(nil)

func (m *MockEntitlementClient) Get(ctx context.Context, externalID string) (model.Entitlement, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, externalID)
	}
	return model.Entitlement{ExternalID: externalID}, nil
}

func (m *MockEntitlementClient) Patch(ctx context.Context, patch adapter.EntitlementPatch) error {
	if m.PatchFunc != nil {
		return m.PatchFunc(ctx, patch)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Patches = append(m.Patches, patch)
	return nil
}

func (m *MockEntitlementClient) patched() []adapter.EntitlementPatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.EntitlementPatch, len(m.Patches))
	copy(out, m.Patches)
	return out
}

// ---- Mock NotificationSink ----

// MockSink records notes and closes Done on the first delivery, so tests
// can wait for the detached notify goroutine.
type MockSink struct {
	mu    sync.Mutex
	Notes []adapter.SettlementNote
	Done  chan struct{}
	once  sync.Once
}

var _ adapter.NotificationSink = (*MockSink)(nil)

func NewMockSink() *MockSink {
	return &MockSink{Done: make(chan struct{})}
}

func (m *MockSink) SettlementCompleted(ctx context.Context, note adapter.SettlementNote) error {
	m.mu.Lock()
	m.Notes = append(m.Notes, note)
	m.mu.Unlock()
	m.once.Do(func() { close(m.Done) })
	return nil
}

func (m *MockSink) notes() []adapter.SettlementNote {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.SettlementNote, len(m.Notes))
	copy(out, m.Notes)
	return out
}

// MockEntitlementCache is a map-backed snapshot store keyed by the
// control-plane external id.
type MockEntitlementCache struct {
	mu        sync.Mutex
	snapshots map[string]model.Entitlement

	GetFunc   func(ctx context.Context, externalID string) (*model.Entitlement, error)
	StoreFunc func(ctx context.Context, ent model.Entitlement) error
}

var _ adapter.EntitlementCache = (*MockEntitlementCache)(nil)

func NewMockEntitlementCache() *MockEntitlementCache {
	return &MockEntitlementCache{snapshots: make(map[string]model.Entitlement)}
}

func (m *MockEntitlementCache) Store(ctx context.Context, ent model.Entitlement) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, ent)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[ent.ExternalID] = ent
	return nil
}

func (m *MockEntitlementCache) Get(ctx context.Context, externalID string) (*model.Entitlement, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, externalID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.snapshots[externalID]
	if !ok {
		return nil, nil
	}
	cp := ent
	return &cp, nil
}

func (m *MockEntitlementCache) Invalidate(ctx context.Context, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, externalID)
	return nil
}

// -----------------------------
// Utilities
// -----------------------------

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
