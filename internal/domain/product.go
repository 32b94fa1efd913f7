package domain

import "time"

// Product represents a catalog product or service. Price is in cents; Stock
// is the number of sellable units.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CatalogEntry projects the product into the read-only view the cart consumes.
func (p *Product) CatalogEntry() CatalogEntry {
	return CatalogEntry{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Category: p.Category,
		ImageURL: p.ImageURL,
	}
}

// InStock reports whether at least the requested quantity is available.
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && quantity <= p.Stock
}
