package alerts

import (
	"testing"
	"time"

	"github.com/example/veloria/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMatchReminderWindow(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		elapsed time.Duration
		kind    string
		ok      bool
	}{
		{"exactly one hour", time.Hour, Reminder1Hour, true},
		{"52 minutes", 52 * time.Minute, Reminder1Hour, true},
		{"68 minutes", 68 * time.Minute, Reminder1Hour, true},
		{"45 minutes is too early", 45 * time.Minute, "", false},
		{"75 minutes misses every window", 75 * time.Minute, "", false},
		{"23 hours 10 minutes", 23*time.Hour + 10*time.Minute, Reminder24Hour, true},
		{"exactly one day", 24 * time.Hour, Reminder24Hour, true},
		{"26 hours misses", 26 * time.Hour, "", false},
		{"71 hours", 71 * time.Hour, Reminder3Days, true},
		{"exactly three days", 72 * time.Hour, Reminder3Days, true},
		{"75 hours is too late", 75 * time.Hour, "", false},
		{"brand new cart", time.Minute, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := MatchReminderWindow(now.Add(-tt.elapsed), now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestMatchReminderWindowMatchesAtMostOne(t *testing.T) {
	now := time.Now()
	seen := map[string]int{}
	for elapsed := time.Duration(0); elapsed <= 80*time.Hour; elapsed += time.Minute {
		if kind, ok := MatchReminderWindow(now.Add(-elapsed), now); ok {
			seen[kind]++
		}
	}
	// Each window is a contiguous range; no elapsed value maps to two kinds
	// and all three kinds are reachable.
	assert.Len(t, seen, 3)
}

func TestCartConverted(t *testing.T) {
	lastItem := time.Now()

	assert.True(t, CartConverted(lastItem.Add(time.Minute), lastItem))
	assert.True(t, CartConverted(lastItem, lastItem), "order at the same instant counts as converted")
	assert.False(t, CartConverted(lastItem.Add(-time.Minute), lastItem))
}

func TestDetectPriceDrop(t *testing.T) {
	t.Run("drop", func(t *testing.T) {
		drop, ok := DetectPriceDrop(100, 80)
		assert.True(t, ok)
		assert.Equal(t, 20.0, drop.Amount)
		assert.Equal(t, 20.0, drop.Percent)
		assert.Equal(t, 80.0, drop.NewPrice)
	})

	t.Run("equal price is not a drop", func(t *testing.T) {
		_, ok := DetectPriceDrop(100, 100)
		assert.False(t, ok)
	})

	t.Run("increase is not a drop", func(t *testing.T) {
		_, ok := DetectPriceDrop(100, 120)
		assert.False(t, ok)
	})

	t.Run("zero baseline avoids division by zero", func(t *testing.T) {
		drop, ok := DetectPriceDrop(0, -1)
		assert.True(t, ok)
		assert.Equal(t, 0.0, drop.Percent)
	})
}

func TestBackInStock(t *testing.T) {
	item := models.WishlistItem{VariantPosition: 2, SnapshotStock: 0}

	assert.True(t, BackInStock(item, 2, 5))
	assert.False(t, BackInStock(item, 1, 5), "variant mismatch never fires")
	assert.False(t, BackInStock(item, 2, 0), "still out of stock")

	item.SnapshotStock = 3
	assert.False(t, BackInStock(item, 2, 5), "only the zero to nonzero transition fires")
}

func TestTotalCart(t *testing.T) {
	items := []models.CartItem{
		{Quantity: 2, SellingPrice: 50, MRP: 60},
		{Quantity: 1, SellingPrice: 100, MRP: 100},
	}

	totals := models.TotalCart(items)
	assert.Equal(t, 3, totals.ItemCount)
	assert.Equal(t, 200.0, totals.Value)
	assert.Equal(t, 20.0, totals.Savings)
}
