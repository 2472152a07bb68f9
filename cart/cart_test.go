package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kento-cell/MyHobbyCoffee/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kenya(gram int) Item {
	return Item{ProductID: "kenya", Title: "Kenya AA", Price: 1000, BaseGram: 100, SelectedGram: gram, SelectedRoast: "light"}
}

func TestUnitPriceScalesWithGram(t *testing.T) {
	assert.Equal(t, int64(2000), kenya(200).UnitPrice())
	assert.Equal(t, int64(1000), kenya(100).UnitPrice())

	odd := Item{Price: 1350, BaseGram: 150, SelectedGram: 200}
	assert.Equal(t, int64(1800), odd.UnitPrice())

	noBase := Item{Price: 800}
	assert.Equal(t, int64(800), noBase.UnitPrice())
}

func TestClamping(t *testing.T) {
	assert.Equal(t, 1, ClampQty(0))
	assert.Equal(t, 10, ClampQty(42))
	assert.Equal(t, 4, ClampQty(4))

	assert.Equal(t, 100, ClampGram(20, 100))
	assert.Equal(t, 1000, ClampGram(5000, 100))
	assert.Equal(t, 300, ClampGram(260, 100))
	assert.Equal(t, 200, ClampGram(249, 0))
}

func TestAddMergesSameVariant(t *testing.T) {
	c := New(nil)

	first := c.Add(kenya(200), 2)
	second := c.Add(kenya(200), 3)
	other := c.Add(kenya(300), 1)

	assert.Equal(t, first.LineID, second.LineID)
	assert.Equal(t, 5, second.Qty)
	assert.NotEqual(t, first.LineID, other.LineID)
	assert.Len(t, c.Items(), 2)
	assert.Equal(t, 6, c.TotalQuantity())
	assert.Equal(t, int64(5*2000+3000), c.TotalAmount())

	merged := c.Add(kenya(200), 9)
	assert.Equal(t, MaxQty, merged.Qty)
}

func TestUpdateAndRemove(t *testing.T) {
	c := New(nil)
	line := c.Add(kenya(100), 1)

	updated, err := c.UpdateQty(line.LineID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Qty)

	updated, err = c.UpdateGram(line.LineID, 740)
	require.NoError(t, err)
	assert.Equal(t, 700, updated.SelectedGram)

	_, err = c.UpdateQty("missing", 2)
	assert.True(t, errors.Is(err, ErrLineNotFound))

	require.NoError(t, c.Remove(line.LineID))
	assert.ErrorIs(t, c.Remove(line.LineID), ErrLineNotFound)
	assert.Empty(t, c.Items())
}

func TestGramNeverDropsBelowBaseGram(t *testing.T) {
	c := New(nil)
	brazil := Item{ProductID: "brazil", Title: "Brazil Santos", Price: 1500, BaseGram: 200, SelectedGram: 100}

	line := c.Add(brazil, 1)
	assert.Equal(t, 200, line.SelectedGram)
	assert.Equal(t, int64(1500), line.UnitPrice())

	updated, err := c.UpdateGram(line.LineID, 100)
	require.NoError(t, err)
	assert.Equal(t, 200, updated.SelectedGram)
	assert.Equal(t, int64(1500), c.TotalAmount())
}

func TestObserversSeeEveryMutation(t *testing.T) {
	c := New(nil)

	var mu sync.Mutex
	var sizes []int
	unsubscribe := c.Subscribe(func(items []Item) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(items))
	})

	line := c.Add(kenya(100), 1)
	c.Add(kenya(200), 1)
	_, _ = c.UpdateQty(line.LineID, 3)
	c.Clear()
	unsubscribe()
	c.Add(kenya(100), 1)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 2, 0}, sizes)
}

func TestSummary(t *testing.T) {
	c := New(nil)
	c.Add(kenya(200), 2)

	s := c.Summary()
	require.Len(t, s.Items, 1)
	assert.Equal(t, int64(2000), s.Items[0].UnitPrice)
	assert.Equal(t, int64(4000), s.Items[0].Subtotal)
	assert.Equal(t, 2, s.TotalQuantity)
	assert.Equal(t, int64(4000), s.TotalAmount)
}

func TestStoreRoundTrip(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	store := NewStore(db)
	ctx := context.Background()

	c, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	assert.Empty(t, c.Items())

	var saveErr error
	store.Persist(ctx, "device-1", c, func(err error) { saveErr = err })
	c.Add(kenya(200), 2)
	c.Add(Item{ProductID: "peru", Title: "Peru", Price: 900, BaseGram: 100}, 1)
	require.NoError(t, saveErr)

	loaded, err := store.Load(ctx, "device-1")
	require.NoError(t, err)
	items := loaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "kenya", items[0].ProductID)
	assert.Equal(t, 2, items[0].Qty)
	assert.Equal(t, "peru", items[1].ProductID)
	assert.Equal(t, 100, items[1].SelectedGram)

	other, err := store.Load(ctx, "device-2")
	require.NoError(t, err)
	assert.Empty(t, other.Items())

	c.Clear()
	loaded, err = store.Load(ctx, "device-1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Items())
}
