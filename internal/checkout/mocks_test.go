package checkout

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/velvetree/listing-checkout/internal/domain/cart"
	"github.com/velvetree/listing-checkout/internal/domain/listing"
	"github.com/velvetree/listing-checkout/internal/domain/order"
	"github.com/velvetree/listing-checkout/internal/domain/product"
	"github.com/velvetree/listing-checkout/internal/domain/subscription"
)

// --- Mock implementations ---

// memCartStore is an in-memory cart.Store preserving insertion order.
type memCartStore struct {
	carts    map[string][]cart.Item
	itemsErr error
	clearErr error
	cleared  []string
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string][]cart.Item)}
}

func (m *memCartStore) Items(_ context.Context, cartID string) ([]cart.Item, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return m.carts[cartID], nil
}

func (m *memCartStore) Add(_ context.Context, cartID string, item cart.Item) error {
	m.carts[cartID] = append(m.carts[cartID], item)
	return nil
}

func (m *memCartStore) Clear(_ context.Context, cartID string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	delete(m.carts, cartID)
	m.cleared = append(m.cleared, cartID)
	return nil
}

// memMetaRepo is an in-memory metadata.Repository with set-once and
// append-only semantics.
type memMetaRepo struct {
	entries map[string][]string // entityID + "\x00" + key -> values
	getErr  error
	setErr  error
}

func newMemMetaRepo() *memMetaRepo {
	return &memMetaRepo{entries: make(map[string][]string)}
}

func metaKey(entityID, key string) string {
	return entityID + "\x00" + key
}

func (m *memMetaRepo) GetFlag(_ context.Context, entityID, key string) (bool, error) {
	if m.getErr != nil {
		return false, m.getErr
	}
	return len(m.entries[metaKey(entityID, key)]) > 0, nil
}

func (m *memMetaRepo) SetFlagOnce(_ context.Context, entityID, key string) error {
	if m.setErr != nil {
		return m.setErr
	}
	k := metaKey(entityID, key)
	if len(m.entries[k]) > 0 {
		return nil
	}
	m.entries[k] = append(m.entries[k], "yes")
	return nil
}

func (m *memMetaRepo) AppendValue(_ context.Context, entityID, key, value string) error {
	m.entries[metaKey(entityID, key)] = append(m.entries[metaKey(entityID, key)], value)
	return nil
}

func (m *memMetaRepo) Values(_ context.Context, entityID, key string) ([]string, error) {
	return m.entries[metaKey(entityID, key)], nil
}

// flagCount reports how many rows the flag key has accumulated; set-once
// must keep this at most 1.
func (m *memMetaRepo) flagCount(entityID, key string) int {
	return len(m.entries[metaKey(entityID, key)])
}

type mockListingRepo struct {
	byID map[string]*listing.Listing
	err  error
}

func (m *mockListingRepo) GetByID(_ context.Context, id string) (*listing.Listing, error) {
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.byID[id]
	if !ok {
		return nil, listing.ErrNotFound
	}
	return l, nil
}

type mockProductRepo struct {
	byID   map[string]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []product.Product
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockOrderRepo struct {
	lastOrder *order.Order
	byID      map[string]*order.Order
	err       error
}

func (m *mockOrderRepo) Create(_ context.Context, o *order.Order) error {
	m.lastOrder = o
	return m.err
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	return o, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, status order.Status) error {
	if o, ok := m.byID[id]; ok {
		o.Status = status
	}
	return nil
}

type mockSubRepo struct {
	lastSub *subscription.Subscription
	err     error
}

func (m *mockSubRepo) Create(_ context.Context, s *subscription.Subscription) error {
	m.lastSub = s
	return m.err
}

func (m *mockSubRepo) GetByID(_ context.Context, _ string) (*subscription.Subscription, error) {
	return m.lastSub, nil
}

// --- Helpers ---

// newTestIntegration wires an enabled Integration over in-memory stores.
func newTestIntegration(meta *memMetaRepo, carts *memCartStore, listings *mockListingRepo) *Integration {
	if listings == nil {
		listings = &mockListingRepo{}
	}
	return NewIntegration(IntegrationConfig{
		Enabled:        true,
		AccountBaseURL: "https://shop.test/my-account",
	}, meta, carts, listings)
}
