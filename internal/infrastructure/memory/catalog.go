package memory

import (
	"context"
	"sync"

	"github.com/flashmarket/storefront/internal/domain/catalog"
)

// Catalog is an in-memory catalog source, used by the demo binary and tests
// in place of the remote product API.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]catalog.Product
	order    []string
}

func NewCatalog(products ...catalog.Product) *Catalog {
	c := &Catalog{products: make(map[string]catalog.Product, len(products))}
	for _, p := range products {
		c.put(p)
	}
	return c
}

func (c *Catalog) List(ctx context.Context) ([]catalog.Product, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]catalog.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (catalog.Product, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// Put inserts or replaces a product.
func (c *Catalog) Put(p catalog.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(p)
}

// Remove withdraws a product from the catalog.
func (c *Catalog) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		return false
	}
	delete(c.products, id)
	for i, pid := range c.order {
		if pid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c *Catalog) put(p catalog.Product) {
	if _, ok := c.products[p.ID]; !ok {
		c.order = append(c.order, p.ID)
	}
	c.products[p.ID] = p
}
