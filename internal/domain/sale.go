package domain

import "time"

// Sale is the immutable record of a completed checkout: the cart's line items
// and derived totals snapshotted at the moment of sale.
type Sale struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Items          []SaleItem `json:"items"`
	SubtotalAmount int64      `json:"subtotal_amount"`
	DiscountKind   string     `json:"discount_kind"`
	DiscountValue  float64    `json:"discount_value"`
	DiscountAmount int64      `json:"discount_amount"`
	TotalAmount    int64      `json:"total_amount"`
	Currency       string     `json:"currency"`
	Note           string     `json:"note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SaleItem is one sold line item.
type SaleItem struct {
	ID        string `json:"id"`
	SaleID    string `json:"sale_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// LineTotal returns the total price for this line item.
func (i *SaleItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}
