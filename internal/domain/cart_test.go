package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	EnableInvariantChecks(true)
	m.Run()
}

func testCart() *Cart {
	return NewCart("cart-1", "user-1", "USD", time.Now(), 24*time.Hour)
}

func line(productID string, qty int, price int64) LineItem {
	return LineItem{ProductID: productID, Name: "item " + productID, Price: price, Quantity: qty}
}

// ---- AddLine ----

func TestAddLine_AppendsNewItemWithQuantityOne(t *testing.T) {
	cart := testCart()

	cart.AddLine(LineItem{ProductID: "p1", Name: "Widget", Price: 999, Quantity: 42})

	require.Equal(t, 1, cart.Len())
	assert.Equal(t, 1, cart.Quantity("p1"), "AddLine ignores the item's own quantity")
	assert.Equal(t, 1, cart.TotalQuantity())
}

func TestAddLine_AccumulatesQuantity(t *testing.T) {
	cart := testCart()

	for i := 0; i < 3; i++ {
		cart.AddLine(line("p1", 1, 500))
	}

	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 3, cart.Quantity("p1"))
	assert.Equal(t, int64(1500), cart.TotalPrice())
}

func TestAddLine_RefreshesDisplayFields(t *testing.T) {
	cart := testCart()

	cart.AddLine(LineItem{ProductID: "p1", Name: "Old Name", Price: 500})
	cart.AddLine(LineItem{ProductID: "p1", Name: "New Name", Price: 450, ImageURL: "http://img/p1.png"})

	items := cart.Lines()
	require.Len(t, items, 1)
	assert.Equal(t, "New Name", items[0].Name)
	assert.Equal(t, int64(450), items[0].Price)
	assert.Equal(t, "http://img/p1.png", items[0].ImageURL)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddLine_PreservesInsertionOrder(t *testing.T) {
	cart := testCart()

	cart.AddLine(line("p1", 1, 100))
	cart.AddLine(line("p2", 1, 200))
	cart.AddLine(line("p3", 1, 300))
	cart.AddLine(line("p2", 1, 200)) // repeat must not reorder

	items := cart.Lines()
	require.Len(t, items, 3)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.Equal(t, "p2", items[1].ProductID)
	assert.Equal(t, "p3", items[2].ProductID)
}

// ---- Seed ----

func TestSeed_ReplacesExistingContents(t *testing.T) {
	cart := testCart()
	cart.AddLine(line("old", 1, 100))

	cart.Seed([]LineItem{line("p1", 2, 500), line("p2", 1, 300)})

	assert.Equal(t, 0, cart.Quantity("old"), "seed never merges with prior state")
	assert.Equal(t, 2, cart.Quantity("p1"))
	assert.Equal(t, 1, cart.Quantity("p2"))
	assert.Equal(t, 3, cart.TotalQuantity())
}

func TestSeed_DropsNonPositiveQuantities(t *testing.T) {
	cart := testCart()

	cart.Seed([]LineItem{line("p1", 0, 100), line("p2", -3, 100), line("p3", 2, 100)})

	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 2, cart.Quantity("p3"))
}

func TestSeed_MergesDuplicateProductIDs(t *testing.T) {
	cart := testCart()

	cart.Seed([]LineItem{line("p1", 2, 100), line("p2", 1, 200), line("p1", 3, 100)})

	assert.Equal(t, 2, cart.Len())
	assert.Equal(t, 5, cart.Quantity("p1"))
	assert.Equal(t, 6, cart.TotalQuantity())
}

func TestSeed_EmptySnapshotClearsCart(t *testing.T) {
	cart := testCart()
	cart.AddLine(line("p1", 1, 100))

	cart.Seed(nil)

	assert.Equal(t, 0, cart.Len())
	assert.Equal(t, 0, cart.TotalQuantity())
	assert.Equal(t, int64(0), cart.TotalPrice())
}

// ---- SetQuantity / SetLine ----

func TestSetQuantity_ReplacesQuantity(t *testing.T) {
	cart := testCart()
	cart.AddLine(line("p1", 1, 250))

	ok := cart.SetQuantity("p1", 7)

	require.True(t, ok)
	assert.Equal(t, 7, cart.Quantity("p1"))
	assert.Equal(t, int64(1750), cart.TotalPrice())
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	cart := testCart()
	cart.AddLine(line("p1", 1, 250))
	cart.AddLine(line("p2", 1, 100))

	ok := cart.SetQuantity("p1", 0)

	require.True(t, ok)
	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 0, cart.Quantity("p1"), "no zero-quantity ghost line may remain")
}

func TestSetQuantity_UnknownProductReturnsFalse(t *testing.T) {
	cart := testCart()

	assert.False(t, cart.SetQuantity("missing", 3))
}

func TestSetLine_InsertsAndReplaces(t *testing.T) {
	cart := testCart()

	cart.SetLine(line("p1", 4, 100))
	cart.SetLine(LineItem{ProductID: "p1", Name: "renamed", Price: 90, Quantity: 2})

	items := cart.Lines()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "renamed", items[0].Name)
	assert.Equal(t, 2, cart.Quantity("p1"))
}

func TestSetLine_NonPositiveQuantityRemoves(t *testing.T) {
	cart := testCart()
	cart.SetLine(line("p1", 4, 100))

	cart.SetLine(line("p1", 0, 100))

	assert.Equal(t, 0, cart.Len())
}

// ---- RemoveLine ----

func TestRemoveLine_RemovesFromBothStructures(t *testing.T) {
	cart := testCart()
	cart.AddLine(line("p1", 1, 100))
	cart.AddLine(line("p2", 1, 200))

	cart.RemoveLine("p1")

	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 0, cart.Quantity("p1"))
	assert.Equal(t, 1, cart.TotalQuantity())
}

func TestRemoveLine_AbsentItemIsNoOp(t *testing.T) {
	cart := testCart()
	cart.AddLine(line("p1", 1, 100))

	cart.RemoveLine("missing")
	cart.RemoveLine("missing")

	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 1, cart.Quantity("p1"))
}

// ---- Totals ----

func TestTotals_SumOverLines(t *testing.T) {
	cart := testCart()
	cart.Seed([]LineItem{line("p1", 3, 199), line("p2", 2, 1050)})

	assert.Equal(t, 5, cart.TotalQuantity())
	assert.Equal(t, int64(3*199+2*1050), cart.TotalPrice())
}

func TestTotals_ExactCentsArithmetic(t *testing.T) {
	// 3 x $0.10 must be exactly $0.30.
	cart := testCart()
	cart.Seed([]LineItem{line("p1", 3, 10)})

	assert.Equal(t, int64(30), cart.TotalPrice())
}

// ---- Serialization ----

func TestCartJSONRoundTrip_RebuildsIndex(t *testing.T) {
	cart := testCart()
	cart.Version = 4
	cart.Seed([]LineItem{line("p1", 2, 150), line("p2", 1, 75)})

	data, err := json.Marshal(cart)
	require.NoError(t, err)

	restored := &Cart{}
	require.NoError(t, json.Unmarshal(data, restored))

	assert.Equal(t, cart.ID, restored.ID)
	assert.Equal(t, 4, restored.Version)
	assert.Equal(t, 2, restored.Quantity("p1"))
	assert.Equal(t, 1, restored.Quantity("p2"))
	assert.Equal(t, cart.TotalPrice(), restored.TotalPrice())
	assert.Equal(t, cart.Lines(), restored.Lines())
}

func TestCartMarshal_EmptyCartHasEmptyItemsArray(t *testing.T) {
	data, err := json.Marshal(testCart())
	require.NoError(t, err)

	assert.Contains(t, string(data), `"items":[]`)
}

func TestCartUnmarshal_DropsCorruptZeroQuantityLines(t *testing.T) {
	// A snapshot written by an older build may carry ghost lines; restoring
	// must not resurrect them.
	raw := `{"id":"c1","user_id":"u1","currency":"USD","version":1,
	         "items":[{"product_id":"p1","quantity":0,"price":100},
	                  {"product_id":"p2","quantity":2,"price":100}]}`

	cart := &Cart{}
	require.NoError(t, json.Unmarshal([]byte(raw), cart))

	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 2, cart.Quantity("p2"))
}
