package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("catalog: product not found")

// Product is a catalog fact. The cart never mutates catalog data, it only
// reads price and stock at the moment a line is created.
type Product struct {
	ID          string
	Name        string
	Price       float64
	Stock       int
	Category    string
	Image       string
	Description string
}

// Source is the read port for whatever supplies the catalog (a remote demo
// API in the storefront, an in-memory list in tests).
type Source interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
}
