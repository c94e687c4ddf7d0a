package cartcache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/avdonin/foodreel/pkg/apiclient"
)

// Cache is the client-side mirror of the authoritative server cart: an
// in-memory copy for instant reads plus a durable JSON file that survives
// restarts. Mutations reach the cache only after the server confirmed them,
// so the mirror never runs ahead of the authority.
type Cache struct {
	mu    sync.Mutex
	items []apiclient.CartEntry
	path  string
}

// New loads the durable mirror from path if one exists. A missing or
// unreadable mirror yields an empty cache, never an error: the next login
// re-hydrates from the server anyway.
func New(path string) *Cache {
	c := &Cache{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var items []apiclient.CartEntry
	if err := json.Unmarshal(data, &items); err != nil {
		return c
	}
	c.items = items
	return c
}

// Hydrate replaces the mirror with the authoritative server cart. Called
// after login and after every confirmed mutation.
func (c *Cache) Hydrate(entries []apiclient.CartEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]apiclient.CartEntry, len(entries))
	copy(c.items, entries)
	return c.persist()
}

// Items returns a snapshot of the cached cart.
func (c *Cache) Items() []apiclient.CartEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]apiclient.CartEntry, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cache) Quantity(productID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, item := range c.items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// Clear wipes memory and the durable mirror. Called on logout regardless of
// server state; this is a client-only reset, not a cart deletion.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cartcache: remove mirror: %w", err)
	}
	return nil
}

func (c *Cache) persist() error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("cartcache: encode mirror: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("cartcache: write mirror: %w", err)
	}
	return nil
}
