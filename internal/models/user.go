package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Account roles. Accounts live in a single table with a role discriminant,
// so email/phone uniqueness holds across roles by construction.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Auth providers. Phone-provider accounts are created pre-verified by the
// Firebase flow and may have no local password.
const (
	ProviderLocal = "local"
	ProviderPhone = "phone"
)

// MaxDeviceTokens caps the per-account push token list at the 10
// most-recently-used devices.
const MaxDeviceTokens = 10

// User is an account record, regular customer or admin.
type User struct {
	BaseModel
	Name         string        `json:"name"`
	// Email may be empty for phone-provider accounts, so uniqueness is
	// enforced by the registration lookup rather than a unique index.
	Email        string        `gorm:"index" json:"email"`
	Phone        string        `gorm:"uniqueIndex" json:"phone"`
	PasswordHash string        `json:"-"`
	Role         string        `gorm:"index" json:"role"`
	Provider     string        `json:"provider"`
	IsVerified   bool          `json:"is_verified"`
	IsActive     bool          `json:"is_active"`
	LastLoginAt  *time.Time    `json:"last_login_at"`
	OTPCodes     []OTPCode     `json:"-"`
	DeviceTokens []DeviceToken `json:"-"`
}

// OTPCode is one entry in an account's bounded OTP history.
type OTPCode struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeviceToken is an FCM push-delivery handle for one of the account's devices.
type DeviceToken struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Token      string    `json:"token"`
	Device     string    `json:"device"`
	LastUsedAt time.Time `json:"last_used_at"`
}

// PushDeviceToken inserts token at the front of the MRU list, de-duplicating
// an already-present token instead of adding it twice, and trims the result
// to MaxDeviceTokens. The returned slice is newest first.
func PushDeviceToken(tokens []DeviceToken, userID uuid.UUID, token, device string, now time.Time) []DeviceToken {
	entry := DeviceToken{UserID: userID, Token: token, Device: device, LastUsedAt: now}
	for _, t := range tokens {
		if t.Token == token {
			entry.BaseModel = t.BaseModel
		}
	}

	result := make([]DeviceToken, 0, len(tokens)+1)
	result = append(result, entry)
	for _, t := range tokens {
		if t.Token != token {
			result = append(result, t)
		}
	}

	sort.SliceStable(result[1:], func(i, j int) bool {
		return result[i+1].LastUsedAt.After(result[j+1].LastUsedAt)
	})

	if len(result) > MaxDeviceTokens {
		result = result[:MaxDeviceTokens]
	}
	return result
}
