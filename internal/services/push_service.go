package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/alerts"
	"github.com/example/veloria/internal/models"
)

const fcmSendURL = "https://fcm.googleapis.com/fcm/send"

// PushService delivers push notifications to an account's registered
// devices through FCM. All sends are best effort: callers log and drop the
// returned error.
type PushService struct {
	serverKey string
	db        *gorm.DB
	client    *http.Client
	log       *zap.Logger
}

// NewPushService constructs a PushService.
func NewPushService(serverKey string, db *gorm.DB, log *zap.Logger) *PushService {
	return &PushService{
		serverKey: serverKey,
		db:        db,
		client:    &http.Client{Timeout: 15 * time.Second},
		log:       log,
	}
}

type fcmMessage struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendToUser pushes a notification to every device token registered for
// the account. Accounts without tokens are a silent no-op.
func (s *PushService) SendToUser(userID uuid.UUID, title, body string, data map[string]string) error {
	if s.serverKey == "" {
		s.log.Debug("fcm server key not configured")
		return nil
	}

	var tokens []models.DeviceToken
	if err := s.db.Where("user_id = ?", userID).
		Order("last_used_at desc").Find(&tokens).Error; err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	ids := make([]string, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.Token)
	}

	payload, err := json.Marshal(fcmMessage{
		RegistrationIDs: ids,
		Notification:    fcmNotification{Title: title, Body: body},
		Data:            data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, fcmSendURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyWelcome greets a freshly verified customer.
func (s *PushService) NotifyWelcome(userID uuid.UUID, name string) error {
	return s.SendToUser(userID, "Welcome to Veloria",
		fmt.Sprintf("Hi %s, your account is verified. Happy shopping!", name),
		map[string]string{"type": "welcome"})
}

// NotifyAbandonedCart reminds a customer about cart contents left behind.
func (s *PushService) NotifyAbandonedCart(userID uuid.UUID, kind string, totals models.CartTotals) error {
	body := fmt.Sprintf("%d item(s) worth %.2f are waiting in your cart", totals.ItemCount, totals.Value)
	if totals.Savings > 0 {
		body = fmt.Sprintf("%s. Check out now and save %.2f!", body, totals.Savings)
	}
	return s.SendToUser(userID, "Your cart misses you", body, map[string]string{
		"type":     "abandoned_cart",
		"reminder": kind,
	})
}

// NotifyPriceDrop alerts a customer that a wishlisted variant got cheaper.
func (s *PushService) NotifyPriceDrop(userID uuid.UUID, item models.WishlistItem, drop alerts.PriceDrop) error {
	return s.SendToUser(userID, "Price drop on your wishlist",
		fmt.Sprintf("%s is now %.2f (was %.2f, %.0f%% off)",
			item.ProductName, drop.NewPrice, drop.OldPrice, drop.Percent),
		map[string]string{
			"type":       "price_drop",
			"product_id": item.ProductID.String(),
		})
}

// NotifyBackInStock alerts a customer that a wishlisted variant is
// available again.
func (s *PushService) NotifyBackInStock(userID uuid.UUID, item models.WishlistItem) error {
	return s.SendToUser(userID, "Back in stock",
		fmt.Sprintf("%s (%s) is back in stock. Grab it before it sells out!",
			item.ProductName, item.VariantLabel),
		map[string]string{
			"type":       "back_in_stock",
			"product_id": item.ProductID.String(),
		})
}
