// File: internal/infra/adapters/provider/registry.go
package provider

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/model"
	"github.com/zavul0nn/STEALTHNET-Admin-Panel-sub000/internal/domain/ports/adapter"
)

// Registry maps the provider enum to its adapter. The engine resolves
// adapters only through here and never branches on provider identity.
type Registry struct {
	byName map[model.Provider]adapter.PaymentProvider
}

func NewRegistry(providers ...adapter.PaymentProvider) *Registry {
	r := &Registry{byName: make(map[model.Provider]adapter.PaymentProvider, len(providers))}
	for _, p := range providers {
		r.byName[p.Name()] = p
	}
	return r
}

func (r *Registry) Get(name model.Provider) (adapter.PaymentProvider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []model.Provider {
	out := make([]model.Provider, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	return out
}

// Shared across adapters.

const requestTimeout = 15 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// formatMajor renders minor units as "123.45" the way card providers
// want amounts on the wire.
func formatMajor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
