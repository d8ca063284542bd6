package alerts

import (
	"time"

	"github.com/example/veloria/internal/models"
)

// Reminder kinds fired by the abandoned-cart sweep.
const (
	Reminder1Hour  = "1hour"
	Reminder24Hour = "24hours"
	Reminder3Days  = "3days"
)

type reminderWindow struct {
	kind      string
	offset    time.Duration
	tolerance time.Duration
}

// The sweep runs periodically, not continuously, so each offset gets a
// symmetric tolerance window instead of an exact match.
var reminderWindows = []reminderWindow{
	{Reminder1Hour, time.Hour, 10 * time.Minute},
	{Reminder24Hour, 24 * time.Hour, 60 * time.Minute},
	{Reminder3Days, 72 * time.Hour, 2 * time.Hour},
}

// MatchReminderWindow tests the cart's most recent item timestamp against
// the three reminder windows and returns the matching kind, if any. The
// windows are disjoint, so at most one matches.
func MatchReminderWindow(lastItemAt, now time.Time) (string, bool) {
	elapsed := now.Sub(lastItemAt)
	for _, w := range reminderWindows {
		if elapsed >= w.offset-w.tolerance && elapsed <= w.offset+w.tolerance {
			return w.kind, true
		}
	}
	return "", false
}

// CartConverted reports whether an order placed at orderAt means the cart
// whose last item was added at lastItemAt is converted rather than
// abandoned.
func CartConverted(orderAt, lastItemAt time.Time) bool {
	return !orderAt.Before(lastItemAt)
}

// PriceDrop describes a detected wishlist price drop.
type PriceDrop struct {
	OldPrice float64
	NewPrice float64
	Amount   float64
	Percent  float64
}

// DetectPriceDrop compares a live variant price against the cached snapshot
// price. Only a strictly lower live price counts as a drop.
func DetectPriceDrop(cachedPrice, livePrice float64) (PriceDrop, bool) {
	if livePrice >= cachedPrice {
		return PriceDrop{}, false
	}
	amount := cachedPrice - livePrice
	percent := 0.0
	if cachedPrice > 0 {
		percent = amount / cachedPrice * 100
	}
	return PriceDrop{
		OldPrice: cachedPrice,
		NewPrice: livePrice,
		Amount:   amount,
		Percent:  percent,
	}, true
}

// BackInStock reports whether a stock update is the zero-to-nonzero
// transition that warrants an alert for the given wishlist item.
func BackInStock(item models.WishlistItem, variantPosition, newQuantity int) bool {
	if item.VariantPosition != variantPosition {
		return false
	}
	return item.SnapshotStock == 0 && newQuantity > 0
}
