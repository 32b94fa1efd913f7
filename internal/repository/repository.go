package repository

import (
	"context"
	"time"

	"github.com/veymira/poslite/internal/domain"
)

// CartRepository defines the persistence strategy for cart snapshots. The
// cart core itself is pure; the service saves a snapshot after each applied
// mutation and restores it on the next read.
type CartRepository interface {
	// Get retrieves the cart snapshot for a user.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save persists a cart snapshot, overwriting any existing one for the user.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart snapshot for a user.
	Delete(ctx context.Context, userID string) error
}

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Category *string
	Search   *string
	MinPrice *int64
	MaxPrice *int64
	LowStock *int // only products with stock at or below this level
	Page     int
	PerPage  int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by its ID.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update modifies an existing product.
	Update(ctx context.Context, p *domain.Product) error

	// Delete removes a product by its ID.
	Delete(ctx context.Context, id string) error

	// AdjustStock changes a product's stock by delta, rejecting adjustments
	// that would make the stock negative.
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, error)
}

// SaleFilter defines filter criteria for listing sales.
type SaleFilter struct {
	UserID  *string
	From    *time.Time
	To      *time.Time
	Page    int
	PerPage int
}

// SaleRepository defines the interface for sale persistence operations.
type SaleRepository interface {
	// Create inserts a sale with its items and decrements the sold products'
	// stock, all atomically.
	Create(ctx context.Context, sale *domain.Sale) error

	// GetByID retrieves a sale by its ID, including items.
	GetByID(ctx context.Context, id string) (*domain.Sale, error)

	// List returns sales matching the filter with the total count. Items are
	// not populated on list results.
	List(ctx context.Context, filter SaleFilter) ([]domain.Sale, int, error)
}
