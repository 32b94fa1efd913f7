package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string, price int64, stock int) CatalogEntry {
	return CatalogEntry{ID: id, Name: "Product " + id, Price: price, Stock: stock}
}

// ============================================================================
// Cart.Add Tests
// ============================================================================

func TestAdd_NewItem(t *testing.T) {
	c := &Cart{}

	res := c.Add(entry("prod-1", 1500, 10), 2)

	assert.Equal(t, ChangeApplied, res)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "prod-1", c.Items[0].ProductID)
	assert.Equal(t, "Product prod-1", c.Items[0].Name)
	assert.Equal(t, int64(1500), c.Items[0].Price)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 10, c.Items[0].Stock)
}

func TestAdd_MergesDuplicateProduct(t *testing.T) {
	c := &Cart{}

	require.Equal(t, ChangeApplied, c.Add(entry("prod-1", 1000, 10), 2))
	require.Equal(t, ChangeApplied, c.Add(entry("prod-1", 1000, 10), 3))

	// One merged line item, never two lines for the same product.
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAdd_RejectedWhenExceedingStock(t *testing.T) {
	c := &Cart{}

	require.Equal(t, ChangeApplied, c.Add(entry("prod-1", 1000, 3), 2))
	res := c.Add(entry("prod-1", 1000, 3), 2)

	// Rejected outright, not clamped to 3.
	assert.Equal(t, ChangeRejectedStock, res)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAdd_NewItemRejectedWhenQuantityAboveStock(t *testing.T) {
	c := &Cart{}

	res := c.Add(entry("prod-1", 1000, 1), 2)

	assert.Equal(t, ChangeRejectedStock, res)
	assert.Empty(t, c.Items)
}

func TestAdd_ZeroStockRejectsAny(t *testing.T) {
	c := &Cart{}

	assert.Equal(t, ChangeRejectedStock, c.Add(entry("prod-1", 1000, 0), 1))
	assert.Empty(t, c.Items)
}

func TestAdd_ExactStockAllowed(t *testing.T) {
	c := &Cart{}

	assert.Equal(t, ChangeApplied, c.Add(entry("prod-1", 1000, 5), 5))
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestAdd_SnapshotsEntryFields(t *testing.T) {
	c := &Cart{}
	e := CatalogEntry{ID: "prod-1", Name: "Espresso", Price: 350, Stock: 8, Category: "drinks", ImageURL: "https://img.example.com/e.jpg"}

	require.Equal(t, ChangeApplied, c.Add(e, 1))

	li := c.Items[0]
	assert.Equal(t, "Espresso", li.Name)
	assert.Equal(t, int64(350), li.Price)
	assert.Equal(t, 8, li.Stock)
	assert.Equal(t, "drinks", li.Category)
	assert.Equal(t, "https://img.example.com/e.jpg", li.ImageURL)
}

func TestAdd_StockInvariantHoldsAcrossSequences(t *testing.T) {
	c := &Cart{}
	e := entry("prod-1", 100, 7)

	// Arbitrary add/update sequence; quantity must never exceed stock.
	c.Add(e, 3)
	c.Add(e, 3)
	c.Add(e, 3) // rejected: 6+3 > 7
	c.UpdateQuantity("prod-1", 9) // rejected
	c.UpdateQuantity("prod-1", 7)
	c.Add(e, 1) // rejected: 7+1 > 7

	require.Len(t, c.Items, 1)
	assert.LessOrEqual(t, c.Items[0].Quantity, c.Items[0].Stock)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

// ============================================================================
// Cart.Remove Tests
// ============================================================================

func TestRemove_Existing(t *testing.T) {
	c := &Cart{}
	require.Equal(t, ChangeApplied, c.Add(entry("prod-1", 1000, 5), 1))

	removed := c.Remove("prod-1")

	assert.True(t, removed)
	assert.Empty(t, c.Items)
	assert.Equal(t, int64(0), c.Subtotal())
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 5), 1)

	assert.False(t, c.Remove("prod-999"))
	assert.Len(t, c.Items, 1)
}

func TestRemove_PreservesOrderOfRemaining(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 100, 5), 1)
	c.Add(entry("b", 200, 5), 1)
	c.Add(entry("c", 300, 5), 1)

	require.True(t, c.Remove("b"))

	require.Len(t, c.Items, 2)
	assert.Equal(t, "a", c.Items[0].ProductID)
	assert.Equal(t, "c", c.Items[1].ProductID)
}

// ============================================================================
// Cart.UpdateQuantity Tests
// ============================================================================

func TestUpdateQuantity_SetsNewQuantity(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 10), 2)

	res := c.UpdateQuantity("prod-1", 7)

	assert.Equal(t, ChangeApplied, res)
	assert.Equal(t, 7, c.Items[0].Quantity)
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 10), 2)

	res := c.UpdateQuantity("prod-1", 0)

	assert.Equal(t, ChangeApplied, res)
	assert.Empty(t, c.Items)
}

func TestUpdateQuantity_NegativeRemoves(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 10), 2)

	assert.Equal(t, ChangeApplied, c.UpdateQuantity("prod-1", -3))
	assert.Empty(t, c.Items)
}

func TestUpdateQuantity_AbsentIsNoop(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 10), 2)

	res := c.UpdateQuantity("prod-999", 5)

	assert.Equal(t, ChangeNotFound, res)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestUpdateQuantity_RejectedAboveSnapshotStock(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 4), 2)

	res := c.UpdateQuantity("prod-1", 5)

	// Previous quantity retained, not clamped to 4.
	assert.Equal(t, ChangeRejectedStock, res)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

// ============================================================================
// Cart.Clear Tests
// ============================================================================

func TestClear_EmptiesItemsAndResetsDiscount(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 1000, 10), 2)
	c.SetDiscount(DiscountFixed, 10)

	c.Clear()

	assert.Empty(t, c.Items)
	assert.Equal(t, NoDiscount(), c.Discount)
	assert.True(t, c.IsEmpty())
}

func TestClear_DiscountDoesNotLeakIntoNextSale(t *testing.T) {
	c := &Cart{}
	c.Add(entry("prod-1", 5000, 10), 1)
	c.SetDiscount(DiscountFixed, 1000)
	require.Equal(t, int64(4000), c.Total())

	c.Clear()
	c.Add(entry("prod-2", 3000, 10), 1)

	// A freshly added item totals its raw subtotal.
	assert.Equal(t, int64(3000), c.Total())
}

// ============================================================================
// Derived Totals Tests
// ============================================================================

func TestSubtotal_SumsLineTotals(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 1000, 10), 2)
	c.Add(entry("b", 500, 10), 3)

	// 2000 + 1500 = 3500
	assert.Equal(t, int64(3500), c.Subtotal())
}

func TestSubtotal_EmptyCart(t *testing.T) {
	c := &Cart{}
	assert.Equal(t, int64(0), c.Subtotal())
}

func TestTotal_NoDiscount(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 1000, 10), 2)

	assert.Equal(t, int64(2000), c.Total())
}

func TestTotal_PercentageDiscount(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 10000, 10), 2) // subtotal 20000
	c.SetDiscount(DiscountPercentage, 25)

	assert.Equal(t, int64(15000), c.Total())
}

func TestTotal_FixedDiscount(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 2500, 10), 2) // subtotal 5000
	c.SetDiscount(DiscountFixed, 1200)

	assert.Equal(t, int64(3800), c.Total())
}

func TestTotal_FixedDiscountFloorsAtZero(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 2500, 10), 2) // subtotal 5000
	c.SetDiscount(DiscountFixed, 8000)

	assert.Equal(t, int64(0), c.Total())
}

func TestTotal_PercentageOver100GoesNegative(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 1000, 10), 1)
	c.SetDiscount(DiscountPercentage, 150)

	// The percentage branch is intentionally not floored at zero.
	assert.Equal(t, int64(-500), c.Total())
}

func TestTotal_ZeroValueDiscountIsIgnored(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 1000, 10), 1)
	c.SetDiscount(DiscountPercentage, 0)

	assert.Equal(t, int64(1000), c.Total())
}

func TestTotal_UnknownKindFallsBackToSubtotal(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 1000, 10), 1)
	c.SetDiscount("mystery", 50)

	assert.Equal(t, int64(1000), c.Total())
}

// ============================================================================
// Cart.ItemCount Tests
// ============================================================================

func TestItemCount_SumsQuantitiesNotLines(t *testing.T) {
	c := &Cart{}
	c.Add(entry("a", 1000, 10), 3)
	c.Add(entry("b", 500, 10), 3)

	assert.Equal(t, 6, c.ItemCount())
	assert.Len(t, c.Items, 2)
}

func TestItemCount_EmptyCart(t *testing.T) {
	c := &Cart{}
	assert.Equal(t, 0, c.ItemCount())
}

// ============================================================================
// Discount Kind Tests
// ============================================================================

func TestIsValidDiscountKind(t *testing.T) {
	assert.True(t, IsValidDiscountKind(DiscountNone))
	assert.True(t, IsValidDiscountKind(DiscountPercentage))
	assert.True(t, IsValidDiscountKind(DiscountFixed))
	assert.False(t, IsValidDiscountKind("bogo"))
	assert.False(t, IsValidDiscountKind(""))
}
