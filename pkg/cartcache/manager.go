package cartcache

import (
	"context"

	"github.com/avdonin/foodreel/pkg/apiclient"
)

// Manager couples the API client with the local cache. Every mutation goes
// to the server first; the cache is updated from the authoritative response
// only when the call succeeds, and is left untouched on failure.
type Manager struct {
	Client *apiclient.Client
	Cache  *Cache
}

func NewManager(client *apiclient.Client, cache *Cache) *Manager {
	return &Manager{Client: client, Cache: cache}
}

// Login authenticates and hydrates the mirror from the server cart.
func (m *Manager) Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error) {
	result, err := m.Client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	entries, err := m.Client.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.Cache.Hydrate(entries); err != nil {
		return nil, err
	}
	return result, nil
}

// Logout clears the mirror unconditionally, even if the server call failed:
// the local session is over either way.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.Client.Logout(ctx)
	if cerr := m.Cache.Clear(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (m *Manager) Add(ctx context.Context, productID uint, qty int) error {
	entries, err := m.Client.AddToCart(ctx, productID, qty)
	if err != nil {
		return err
	}
	return m.Cache.Hydrate(entries)
}

func (m *Manager) Increment(ctx context.Context, productID uint) error {
	return m.Add(ctx, productID, 1)
}

func (m *Manager) Decrement(ctx context.Context, productID uint) error {
	return m.Add(ctx, productID, -1)
}

func (m *Manager) Remove(ctx context.Context, productID uint) error {
	entries, err := m.Client.RemoveFromCart(ctx, productID)
	if err != nil {
		return err
	}
	return m.Cache.Hydrate(entries)
}
