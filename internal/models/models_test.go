package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushDeviceToken(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("new token goes to the front", func(t *testing.T) {
		existing := []DeviceToken{
			{UserID: userID, Token: "old", Device: "android", LastUsedAt: now.Add(-time.Hour)},
		}
		result := PushDeviceToken(existing, userID, "fresh", "ios", now)

		require.Len(t, result, 2)
		assert.Equal(t, "fresh", result[0].Token)
		assert.Equal(t, "ios", result[0].Device)
		assert.Equal(t, now, result[0].LastUsedAt)
		assert.Equal(t, "old", result[1].Token)
	})

	t.Run("duplicate token moves to the front without growing the list", func(t *testing.T) {
		firstSeen := now.Add(-48 * time.Hour)
		existing := []DeviceToken{
			{UserID: userID, Token: "a", LastUsedAt: now.Add(-time.Minute)},
			{BaseModel: BaseModel{ID: uuid.New(), CreatedAt: firstSeen}, UserID: userID, Token: "b", LastUsedAt: now.Add(-2 * time.Minute)},
			{UserID: userID, Token: "c", LastUsedAt: now.Add(-3 * time.Minute)},
		}
		result := PushDeviceToken(existing, userID, "b", "android", now)

		require.Len(t, result, 3)
		assert.Equal(t, "b", result[0].Token)
		assert.Equal(t, now, result[0].LastUsedAt)
		assert.Equal(t, firstSeen, result[0].CreatedAt, "re-submitted token keeps its original created_at")
		assert.Equal(t, "a", result[1].Token)
		assert.Equal(t, "c", result[2].Token)
	})

	t.Run("list is capped at the most recent tokens", func(t *testing.T) {
		existing := make([]DeviceToken, 0, MaxDeviceTokens)
		for i := 0; i < MaxDeviceTokens; i++ {
			existing = append(existing, DeviceToken{
				UserID:     userID,
				Token:      fmt.Sprintf("token-%d", i),
				LastUsedAt: now.Add(-time.Duration(i) * time.Minute),
			})
		}
		result := PushDeviceToken(existing, userID, "newest", "web", now)

		require.Len(t, result, MaxDeviceTokens)
		assert.Equal(t, "newest", result[0].Token)
		// The oldest token falls off the end.
		for _, tok := range result {
			assert.NotEqual(t, fmt.Sprintf("token-%d", MaxDeviceTokens-1), tok.Token)
		}
	})
}

func TestTotalCart(t *testing.T) {
	items := []CartItem{
		{Quantity: 2, SellingPrice: 450, MRP: 500},
		{Quantity: 1, SellingPrice: 1200, MRP: 1200},
	}

	totals := TotalCart(items)

	assert.Equal(t, 3, totals.ItemCount)
	assert.InDelta(t, 2100, totals.Value, 0.001)
	assert.InDelta(t, 100, totals.Savings, 0.001)
}

func TestTotalCartEmpty(t *testing.T) {
	totals := TotalCart(nil)
	assert.Zero(t, totals.ItemCount)
	assert.Zero(t, totals.Value)
	assert.Zero(t, totals.Savings)
}

func TestVariantAt(t *testing.T) {
	p := Product{
		Variants: []ProductVariant{
			{Position: 0, Label: "250g", StockQuantity: 0},
			{Position: 1, Label: "500g", StockQuantity: 7},
		},
	}

	v, ok := p.VariantAt(1)
	require.True(t, ok)
	assert.Equal(t, "500g", v.Label)

	_, ok = p.VariantAt(5)
	assert.False(t, ok)

	assert.True(t, p.Variants[1].InStock())
	assert.False(t, p.Variants[0].InStock())
}
