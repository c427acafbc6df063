package domain

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// LineItem represents one distinct purchasable item in the cart.
type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // unit price in cents
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Subtotal returns the line's price contribution in cents.
func (li LineItem) Subtotal() int64 {
	return li.Price * int64(li.Quantity)
}

// invariantChecks makes cart mutations panic when the quantity index and the
// item list disagree. An out-of-sync index is a logic bug, not a recoverable
// condition, so tests enable this instead of letting the cart self-heal.
var invariantChecks = false

// EnableInvariantChecks toggles fail-fast index verification.
func EnableInvariantChecks(on bool) { invariantChecks = on }

// Cart is the in-memory cart aggregate: an ordered sequence of line items
// unique by product ID, plus a derived quantity index kept consistent with
// the item list. Quantities are always positive; a line reaching quantity 0
// is removed from both structures. All money amounts are int64 cents so
// totals reconcile exactly with upstream totals.
//
// The aggregate is safe for concurrent use; every read-modify-write sequence
// holds the internal mutex.
type Cart struct {
	ID        string
	UserID    string
	Currency  string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time

	mu            sync.Mutex
	items         []LineItem
	quantityIndex map[string]int
}

// NewCart creates an empty cart for the given user.
func NewCart(id, userID, currency string, now time.Time, ttl time.Duration) *Cart {
	return &Cart{
		ID:            id,
		UserID:        userID,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
		ExpiresAt:     now.Add(ttl),
		items:         []LineItem{},
		quantityIndex: make(map[string]int),
	}
}

// Seed replaces the entire cart contents with the given snapshot and rebuilds
// the quantity index from scratch. It never merges with prior state. Entries
// with quantity < 1 are dropped; duplicate product IDs merge by summing.
func (c *Cart) Seed(items []LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seedLocked(items)
	c.verifyLocked()
}

func (c *Cart) seedLocked(items []LineItem) {
	c.items = c.items[:0]
	c.quantityIndex = make(map[string]int, len(items))

	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if _, exists := c.quantityIndex[item.ProductID]; exists {
			for i := range c.items {
				if c.items[i].ProductID == item.ProductID {
					c.items[i].Quantity += item.Quantity
					break
				}
			}
			c.quantityIndex[item.ProductID] += item.Quantity
			continue
		}
		c.items = append(c.items, item)
		c.quantityIndex[item.ProductID] = item.Quantity
	}
}

// AddLine adds one unit of the given item: absent items are appended with
// quantity 1, present items have their quantity incremented by 1. The item's
// own Quantity field is ignored; display fields (name, price, image) refresh
// on repeat adds.
func (c *Cart) AddLine(item LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.quantityIndex[item.ProductID]; exists {
		for i := range c.items {
			if c.items[i].ProductID == item.ProductID {
				c.items[i].Quantity++
				c.items[i].Name = item.Name
				c.items[i].Price = item.Price
				c.items[i].ImageURL = item.ImageURL
				break
			}
		}
		c.quantityIndex[item.ProductID]++
	} else {
		item.Quantity = 1
		c.items = append(c.items, item)
		c.quantityIndex[item.ProductID] = 1
	}

	c.verifyLocked()
}

// SetLine inserts or replaces a line with the given quantity. A quantity
// below 1 removes the line, matching SetQuantity.
func (c *Cart) SetLine(item LineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.Quantity < 1 {
		c.removeLocked(item.ProductID)
		c.verifyLocked()
		return
	}

	if _, exists := c.quantityIndex[item.ProductID]; exists {
		for i := range c.items {
			if c.items[i].ProductID == item.ProductID {
				c.items[i] = item
				break
			}
		}
	} else {
		c.items = append(c.items, item)
	}
	c.quantityIndex[item.ProductID] = item.Quantity

	c.verifyLocked()
}

// SetQuantity replaces the quantity of an existing line. A quantity of 0 or
// below removes the line. Returns false if no line with the ID exists.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.quantityIndex[productID]; !exists {
		return false
	}

	if quantity < 1 {
		c.removeLocked(productID)
	} else {
		for i := range c.items {
			if c.items[i].ProductID == productID {
				c.items[i].Quantity = quantity
				break
			}
		}
		c.quantityIndex[productID] = quantity
	}

	c.verifyLocked()
	return true
}

// RemoveLine removes the matching line from both the item list and the
// quantity index. No-op if the item is not present.
func (c *Cart) RemoveLine(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(productID)
	c.verifyLocked()
}

func (c *Cart) removeLocked(productID string) {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	delete(c.quantityIndex, productID)
}

// Quantity returns the quantity for the given product ID, or 0 if absent.
func (c *Cart) Quantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quantityIndex[productID]
}

// Lines returns a copy of the line items in insertion order.
func (c *Cart) Lines() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// TotalQuantity returns the sum of all quantities across lines.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the cart total in cents.
func (c *Cart) TotalPrice() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total int64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// indexTotalLocked sums the quantity index. Must match TotalQuantity.
func (c *Cart) indexTotalLocked() int {
	var total int
	for _, q := range c.quantityIndex {
		total += q
	}
	return total
}

// verifyLocked panics if the item list and quantity index disagree.
func (c *Cart) verifyLocked() {
	if !invariantChecks {
		return
	}
	if len(c.items) != len(c.quantityIndex) {
		panic(fmt.Sprintf("cart %s: %d items but %d index entries", c.ID, len(c.items), len(c.quantityIndex)))
	}
	var listTotal int
	for _, item := range c.items {
		if item.Quantity < 1 {
			panic(fmt.Sprintf("cart %s: non-positive quantity %d for %s", c.ID, item.Quantity, item.ProductID))
		}
		if c.quantityIndex[item.ProductID] != item.Quantity {
			panic(fmt.Sprintf("cart %s: index quantity %d != line quantity %d for %s",
				c.ID, c.quantityIndex[item.ProductID], item.Quantity, item.ProductID))
		}
		listTotal += item.Quantity
	}
	if listTotal != c.indexTotalLocked() {
		panic(fmt.Sprintf("cart %s: list total %d != index total %d", c.ID, listTotal, c.indexTotalLocked()))
	}
}

// cartSnapshot is the serialized cart layout stored in the session store and
// exchanged with the upstream API.
type cartSnapshot struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Currency  string     `json:"currency"`
	Version   int        `json:"version"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// MarshalJSON serializes the cart as a snapshot. The quantity index is
// derived state and is not persisted.
func (c *Cart) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	snap := cartSnapshot{
		ID:        c.ID,
		UserID:    c.UserID,
		Currency:  c.Currency,
		Version:   c.Version,
		Items:     append([]LineItem(nil), c.items...),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ExpiresAt: c.ExpiresAt,
	}
	c.mu.Unlock()
	if snap.Items == nil {
		snap.Items = []LineItem{}
	}
	return json.Marshal(snap)
}

// UnmarshalJSON restores a cart from a snapshot, rebuilding the quantity
// index from scratch.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var snap cartSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ID = snap.ID
	c.UserID = snap.UserID
	c.Currency = snap.Currency
	c.Version = snap.Version
	c.CreatedAt = snap.CreatedAt
	c.UpdatedAt = snap.UpdatedAt
	c.ExpiresAt = snap.ExpiresAt
	c.seedLocked(snap.Items)
	return nil
}
