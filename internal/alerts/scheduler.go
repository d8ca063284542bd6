// Package alerts implements the time-windowed alert sweeps: abandoned-cart
// reminders, wishlist price-drop alerts and the event-triggered
// back-in-stock check.
package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/models"
)

// Notifier delivers alert pushes. Failures are logged by the scheduler and
// never abort a sweep.
type Notifier interface {
	NotifyAbandonedCart(userID uuid.UUID, kind string, totals models.CartTotals) error
	NotifyPriceDrop(userID uuid.UUID, item models.WishlistItem, drop PriceDrop) error
	NotifyBackInStock(userID uuid.UUID, item models.WishlistItem) error
}

// Scheduler runs the periodic sweeps over carts and wishlists.
type Scheduler struct {
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(db *gorm.DB, notifier Notifier, log *zap.Logger) *Scheduler {
	return &Scheduler{db: db, notifier: notifier, log: log}
}

// Run drives the two periodic sweeps until ctx is cancelled. The sweeps are
// also exposed through admin routes so an external cron can trigger them.
func (s *Scheduler) Run(ctx context.Context, cartInterval, priceDropInterval time.Duration) {
	cartTicker := time.NewTicker(cartInterval)
	priceTicker := time.NewTicker(priceDropInterval)
	defer cartTicker.Stop()
	defer priceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cartTicker.C:
			if _, err := s.SweepAbandonedCarts(ctx); err != nil {
				s.log.Error("abandoned cart sweep failed", zap.Error(err))
			}
		case <-priceTicker.C:
			if _, err := s.SweepPriceDrops(ctx); err != nil {
				s.log.Error("price drop sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepAbandonedCarts scans every customer owning cart items and fires at
// most one typed reminder per customer per run. Returns the number of
// reminders sent.
func (s *Scheduler) SweepAbandonedCarts(ctx context.Context) (int, error) {
	var customerIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Distinct("customer_id").Pluck("customer_id", &customerIDs).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	sent := 0
	for _, customerID := range customerIDs {
		fired, err := s.remindCustomer(ctx, customerID, now)
		if err != nil {
			s.log.Warn("abandoned cart check failed",
				zap.String("customer_id", customerID.String()), zap.Error(err))
			continue
		}
		if fired {
			sent++
		}
	}

	s.log.Info("abandoned cart sweep done",
		zap.Int("customers", len(customerIDs)), zap.Int("reminders", sent))
	return sent, nil
}

func (s *Scheduler) remindCustomer(ctx context.Context, customerID uuid.UUID, now time.Time) (bool, error) {
	var items []models.CartItem
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc").Find(&items).Error; err != nil {
		return false, err
	}
	if len(items) == 0 {
		return false, nil
	}
	lastItemAt := items[0].CreatedAt

	// An order placed at or after the newest cart item means the cart
	// converted; no reminder.
	var lastOrder models.Order
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("placed_at desc").First(&lastOrder).Error
	if err == nil && CartConverted(lastOrder.PlacedAt, lastItemAt) {
		return false, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return false, err
	}

	kind, ok := MatchReminderWindow(lastItemAt, now)
	if !ok {
		return false, nil
	}

	// A sent-marker per (cart state, kind) makes reminders idempotent even
	// when sweeps run off-cadence or windows overlap.
	var prior int64
	if err := s.db.WithContext(ctx).Model(&models.CartReminder{}).
		Where("customer_id = ? AND kind = ? AND cart_last_item_at = ?", customerID, kind, lastItemAt).
		Count(&prior).Error; err != nil {
		return false, err
	}
	if prior > 0 {
		return false, nil
	}

	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", customerID).Error; err != nil {
		return false, err
	}

	totals := models.TotalCart(items)
	if err := s.notifier.NotifyAbandonedCart(customer.UserID, kind, totals); err != nil {
		return false, err
	}

	marker := models.CartReminder{CustomerID: customerID, Kind: kind, CartLastItemAt: lastItemAt}
	if err := s.db.WithContext(ctx).Create(&marker).Error; err != nil {
		s.log.Warn("reminder marker create failed",
			zap.String("customer_id", customerID.String()), zap.Error(err))
	}
	return true, nil
}

// SweepPriceDrops re-fetches the live variant behind every wishlist item and
// alerts customers whose cached price is now above the live price. After a
// successful alert the cached snapshot becomes the new baseline, so the next
// sweep does not re-alert the same drop. Returns the number of alerts sent.
func (s *Scheduler) SweepPriceDrops(ctx context.Context) (int, error) {
	var items []models.WishlistItem
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range items {
		fired, err := s.alertPriceDrop(ctx, &items[i])
		if err != nil {
			s.log.Warn("price drop check failed",
				zap.String("wishlist_item_id", items[i].ID.String()), zap.Error(err))
			continue
		}
		if fired {
			sent++
		}
	}

	s.log.Info("price drop sweep done", zap.Int("items", len(items)), zap.Int("alerts", sent))
	return sent, nil
}

func (s *Scheduler) alertPriceDrop(ctx context.Context, item *models.WishlistItem) (bool, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Preload("Variants").
		First(&product, "id = ?", item.ProductID).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	variant, ok := product.VariantAt(item.VariantPosition)
	if !ok {
		return false, nil
	}

	drop, ok := DetectPriceDrop(item.SnapshotPrice, variant.SellingPrice)
	if !ok {
		return false, nil
	}

	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "id = ?", item.CustomerID).Error; err != nil {
		return false, err
	}

	if err := s.notifier.NotifyPriceDrop(customer.UserID, *item, drop); err != nil {
		return false, err
	}

	return true, s.db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
		"snapshot_price": variant.SellingPrice,
		"snapshot_mrp":   variant.MRP,
	}).Error
}

// CheckBackInStock is the event-triggered check run after an inventory
// update. It alerts every wishlist item on the product whose cached variant
// stock was zero, for the classic zero-to-nonzero transition only. Returns
// the number of alerts sent.
func (s *Scheduler) CheckBackInStock(ctx context.Context, productID uuid.UUID, variantPosition, newQuantity int) (int, error) {
	var items []models.WishlistItem
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).Find(&items).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range items {
		item := &items[i]
		if !BackInStock(*item, variantPosition, newQuantity) {
			continue
		}

		var customer models.Customer
		if err := s.db.WithContext(ctx).First(&customer, "id = ?", item.CustomerID).Error; err != nil {
			s.log.Warn("back in stock check failed",
				zap.String("wishlist_item_id", item.ID.String()), zap.Error(err))
			continue
		}

		if err := s.notifier.NotifyBackInStock(customer.UserID, *item); err != nil {
			s.log.Warn("back in stock alert failed",
				zap.String("wishlist_item_id", item.ID.String()), zap.Error(err))
			continue
		}

		if err := s.db.WithContext(ctx).Model(item).Updates(map[string]interface{}{
			"snapshot_stock": newQuantity,
			"in_stock":       newQuantity > 0,
		}).Error; err != nil {
			s.log.Warn("snapshot stock update failed",
				zap.String("wishlist_item_id", item.ID.String()), zap.Error(err))
			continue
		}
		sent++
	}

	return sent, nil
}
