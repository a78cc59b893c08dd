package domain

import "time"

// LineItem is one product entry in a cart. UnitPrice is in minor currency units.
type LineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart is the line-item collection for one shopper session. Items holds at
// most one entry per ID and never an entry with quantity below 1.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []LineItem `json:"items"`
	Currency  string     `json:"currency"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for sessionID.
func NewCart(sessionID, currency string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     []LineItem{},
		Currency:  currency,
	}
}

// AddItem merges item into the cart. When an entry with the same ID exists
// only its quantity grows; the stored name, price and image are kept.
func (c *Cart) AddItem(item LineItem) {
	if i := c.FindItemIndex(item.ID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
		return
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes the entry for id. Missing ids are ignored.
func (c *Cart) RemoveItem(id string) {
	i := c.FindItemIndex(id)
	if i < 0 {
		return
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// UpdateQuantity sets the quantity for id; a quantity of 0 or less removes
// the entry. Missing ids are ignored.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}
	if i := c.FindItemIndex(id); i >= 0 {
		c.Items[i].Quantity = quantity
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

// TotalPrice is the sum of unit price times quantity over all entries.
func (c *Cart) TotalPrice() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the position of id in Items, or -1.
func (c *Cart) FindItemIndex(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy that shares no memory with c.
func (c *Cart) Clone() Cart {
	cp := *c
	cp.Items = make([]LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return cp
}
