// Package cart holds the storefront cart: gram-scaled lines, clamping rules
// and change observers. Store persists carts per device id.
package cart

import (
	"errors"
	"math"
	"sync"

	"github.com/google/uuid"
)

const (
	MinQty      = 1
	MaxQty      = 10
	DefaultGram = 100
	MaxGram     = 1000
	GramStep    = 100
)

var ErrLineNotFound = errors.New("cart line not found")

type Item struct {
	LineID        string `json:"lineId"`
	ProductID     string `json:"productId"`
	Title         string `json:"title"`
	Price         int64  `json:"price"`
	Image         string `json:"image,omitempty"`
	SelectedGram  int    `json:"selectedGram"`
	BaseGram      int    `json:"baseGram"`
	SelectedRoast string `json:"selectedRoast,omitempty"`
	Qty           int    `json:"qty"`
}

// UnitPrice scales the base price to the selected weight, rounded to the yen.
func (i Item) UnitPrice() int64 {
	if i.BaseGram <= 0 || i.SelectedGram <= 0 {
		return i.Price
	}
	return int64(math.Round(float64(i.Price) * float64(i.SelectedGram) / float64(i.BaseGram)))
}

func (i Item) Subtotal() int64 {
	return i.UnitPrice() * int64(i.Qty)
}

func (i Item) sameVariant(o Item) bool {
	return i.ProductID == o.ProductID && i.SelectedGram == o.SelectedGram && i.SelectedRoast == o.SelectedRoast
}

func ClampQty(qty int) int {
	if qty < MinQty {
		return MinQty
	}
	if qty > MaxQty {
		return MaxQty
	}
	return qty
}

// ClampGram bounds gram to [minGram, MaxGram] and rounds to the nearest GramStep.
func ClampGram(gram, minGram int) int {
	if minGram <= 0 {
		minGram = DefaultGram
	}
	if gram < minGram {
		gram = minGram
	}
	if gram > MaxGram {
		gram = MaxGram
	}
	return int(math.Round(float64(gram)/GramStep)) * GramStep
}

type Observer func(items []Item)

type Cart struct {
	mu        sync.Mutex
	items     []Item
	observers map[int]Observer
	nextObs   int
}

func New(items []Item) *Cart {
	c := &Cart{observers: make(map[int]Observer)}
	c.items = append(c.items, items...)
	return c
}

// Subscribe registers fn to run after every mutation. The returned func removes it.
func (c *Cart) Subscribe(fn Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Cart) snapshot() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// notify must be called without holding mu.
func (c *Cart) notify() {
	c.mu.Lock()
	items := c.snapshot()
	observers := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(items)
	}
}

// Add merges into an existing line with the same product, gram and roast,
// or appends a new line. It returns the resulting line.
func (c *Cart) Add(item Item, qty int) Item {
	qty = ClampQty(qty)
	if item.BaseGram <= 0 {
		item.BaseGram = DefaultGram
	}
	if item.SelectedGram <= 0 {
		item.SelectedGram = item.BaseGram
	}
	item.SelectedGram = ClampGram(item.SelectedGram, item.BaseGram)

	c.mu.Lock()
	var line Item
	merged := false
	for i := range c.items {
		if c.items[i].sameVariant(item) {
			c.items[i].Qty = ClampQty(c.items[i].Qty + qty)
			line = c.items[i]
			merged = true
			break
		}
	}
	if !merged {
		item.LineID = uuid.NewString()
		item.Qty = qty
		c.items = append(c.items, item)
		line = item
	}
	c.mu.Unlock()

	c.notify()
	return line
}

func (c *Cart) update(lineID string, fn func(*Item)) (Item, error) {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].LineID == lineID {
			fn(&c.items[i])
			line := c.items[i]
			c.mu.Unlock()
			c.notify()
			return line, nil
		}
	}
	c.mu.Unlock()
	return Item{}, ErrLineNotFound
}

func (c *Cart) UpdateQty(lineID string, qty int) (Item, error) {
	return c.update(lineID, func(it *Item) { it.Qty = ClampQty(qty) })
}

func (c *Cart) UpdateGram(lineID string, gram int) (Item, error) {
	return c.update(lineID, func(it *Item) { it.SelectedGram = ClampGram(gram, it.BaseGram) })
}

func (c *Cart) Remove(lineID string) error {
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].LineID == lineID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.mu.Unlock()
			c.notify()
			return nil
		}
	}
	c.mu.Unlock()
	return ErrLineNotFound
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.notify()
}

func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, it := range c.items {
		total += it.Qty
	}
	return total
}

func (c *Cart) TotalAmount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, it := range c.items {
		total += it.Subtotal()
	}
	return total
}

// Line is an Item with its computed prices, as returned to clients.
type Line struct {
	Item
	UnitPrice int64 `json:"unitPrice"`
	Subtotal  int64 `json:"subtotal"`
}

type Summary struct {
	Items         []Line `json:"items"`
	TotalQuantity int    `json:"totalQuantity"`
	TotalAmount   int64  `json:"totalAmount"`
}

func (c *Cart) Summary() Summary {
	items := c.Items()
	s := Summary{Items: make([]Line, 0, len(items))}
	for _, it := range items {
		s.Items = append(s.Items, Line{Item: it, UnitPrice: it.UnitPrice(), Subtotal: it.Subtotal()})
		s.TotalQuantity += it.Qty
		s.TotalAmount += it.Subtotal()
	}
	return s
}
