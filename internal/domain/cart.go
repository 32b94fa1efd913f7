package domain

import (
	"math"
	"time"
)

// Discount kinds applicable to a cart.
const (
	DiscountNone       = "none"
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// ValidDiscountKinds returns the set of valid discount kinds.
func ValidDiscountKinds() []string {
	return []string{DiscountNone, DiscountPercentage, DiscountFixed}
}

// IsValidDiscountKind checks whether the given string is a valid discount kind.
func IsValidDiscountKind(kind string) bool {
	for _, k := range ValidDiscountKinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// ChangeResult reports the outcome of a cart mutation. Mutations never fail
// with an error for business-rule violations; a rejected change leaves the
// cart untouched and is reported here so callers can react without diffing
// state.
type ChangeResult int

const (
	// ChangeApplied means the mutation took effect.
	ChangeApplied ChangeResult = iota
	// ChangeNotFound means no line item matched and the cart is unchanged.
	ChangeNotFound
	// ChangeRejectedStock means the requested quantity would exceed the line
	// item's snapshot stock; the cart is unchanged (rejected, not clamped).
	ChangeRejectedStock
)

// CatalogEntry is the read-only product view the cart consumes when adding a
// line item. The cart never mutates the catalog.
type CatalogEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	Category string `json:"category,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// LineItem is a single product entry in the cart. Name, price, and stock are
// snapshots taken at add time; stock is the ceiling for the item's quantity
// and is not re-validated live against the catalog.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Stock     int    `json:"stock"`
	Category  string `json:"category,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// LineTotal returns price × quantity for this line item.
func (li *LineItem) LineTotal() int64 {
	return li.Price * int64(li.Quantity)
}

// DiscountPolicy is the single active discount applied to the subtotal.
// For DiscountPercentage the value is interpreted as 0–100; for DiscountFixed
// it is an absolute amount in cents.
type DiscountPolicy struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// NoDiscount returns the zero discount policy.
func NoDiscount() DiscountPolicy {
	return DiscountPolicy{Kind: DiscountNone, Value: 0}
}

// Cart is the aggregate root for an in-progress sale: an ordered collection
// of line items plus one discount policy. It is owned by a single session and
// mutated synchronously; all derived values are recomputed on demand.
//
// Invariants: every line item satisfies 1 <= Quantity <= Stock, and no two
// line items share a ProductID.
type Cart struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Items     []LineItem     `json:"items"`
	Discount  DiscountPolicy `json:"discount"`
	Currency  string         `json:"currency"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// findItem returns the index of the line item with the given product ID, or -1.
func (c *Cart) findItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// FindItem returns the line item with the given product ID, or nil.
func (c *Cart) FindItem(productID string) *LineItem {
	if i := c.findItem(productID); i >= 0 {
		return &c.Items[i]
	}
	return nil
}

// Add puts quantity units of the catalog entry into the cart, merging with an
// existing line item for the same product. If the merged (or initial)
// quantity would exceed the entry's stock the whole call is a no-op and
// ChangeRejectedStock is returned; the addition is never clamped or partially
// applied. Name, price, and stock are snapshotted from the entry on first add.
func (c *Cart) Add(entry CatalogEntry, quantity int) ChangeResult {
	if quantity < 1 {
		return ChangeNotFound
	}

	if i := c.findItem(entry.ID); i >= 0 {
		newQty := c.Items[i].Quantity + quantity
		if newQty > entry.Stock {
			return ChangeRejectedStock
		}
		c.Items[i].Quantity = newQty
		return ChangeApplied
	}

	if quantity > entry.Stock {
		return ChangeRejectedStock
	}

	c.Items = append(c.Items, LineItem{
		ProductID: entry.ID,
		Name:      entry.Name,
		Price:     entry.Price,
		Quantity:  quantity,
		Stock:     entry.Stock,
		Category:  entry.Category,
		ImageURL:  entry.ImageURL,
	})
	return ChangeApplied
}

// Remove deletes the line item with the given product ID. Returns false if no
// such item exists (no-op, not an error).
func (c *Cart) Remove(productID string) bool {
	i := c.findItem(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// UpdateQuantity sets the quantity of an existing line item. A quantity of
// zero or less removes the item. A quantity above the item's snapshot stock
// is rejected and the previous quantity retained.
func (c *Cart) UpdateQuantity(productID string, quantity int) ChangeResult {
	if quantity <= 0 {
		if c.Remove(productID) {
			return ChangeApplied
		}
		return ChangeNotFound
	}

	i := c.findItem(productID)
	if i < 0 {
		return ChangeNotFound
	}
	if quantity > c.Items[i].Stock {
		return ChangeRejectedStock
	}
	c.Items[i].Quantity = quantity
	return ChangeApplied
}

// Clear empties the cart and resets the discount to none.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
	c.Discount = NoDiscount()
}

// SetDiscount replaces the discount policy wholesale. Values above 100 for a
// percentage are not rejected here; see Total for the consequences.
func (c *Cart) SetDiscount(kind string, value float64) {
	c.Discount = DiscountPolicy{Kind: kind, Value: value}
}

// Subtotal returns the sum of price × quantity over all line items, in cents.
// Recomputed on every call; the cart is small enough that caching would only
// buy invalidation bugs.
func (c *Cart) Subtotal() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].LineTotal()
	}
	return total
}

// Total returns the subtotal with the discount applied. A fixed discount is
// floored at zero. A percentage discount is NOT floored nor clamped to 100,
// so a percentage above 100 yields a negative total; this asymmetry is
// deliberate and matches the historical behavior callers depend on.
func (c *Cart) Total() int64 {
	subtotal := c.Subtotal()

	if c.Discount.Value <= 0 {
		return subtotal
	}

	switch c.Discount.Kind {
	case DiscountPercentage:
		off := int64(math.Round(float64(subtotal) * c.Discount.Value / 100))
		return subtotal - off
	case DiscountFixed:
		total := subtotal - int64(math.Round(c.Discount.Value))
		if total < 0 {
			return 0
		}
		return total
	default:
		return subtotal
	}
}

// ItemCount returns the sum of quantities over all line items, not the number
// of distinct lines.
func (c *Cart) ItemCount() int {
	var count int
	for i := range c.Items {
		count += c.Items[i].Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
