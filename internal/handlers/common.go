package handlers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/models"
)

var nowFunc = time.Now

// dispatch runs a side effect in the background, after the response has
// been written. Failures are logged and never reach the caller: email,
// push and admin-alert delivery are advisory to the primary operation.
func dispatch(log *zap.Logger, name string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			log.Warn("side effect failed", zap.String("effect", name), zap.Error(err))
		}
	}()
}

// customerForAccount loads the customer profile linked to an account,
// creating it from the account record when the best-effort link at
// registration time did not happen.
func customerForAccount(db *gorm.DB, accountID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := db.First(&customer, "user_id = ?", accountID).Error
	if err == nil {
		return &customer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var user models.User
	if err := db.First(&user, "id = ?", accountID).Error; err != nil {
		return nil, err
	}

	customer = models.Customer{
		UserID:     user.ID,
		Email:      user.Email,
		Phone:      user.Phone,
		Name:       user.Name,
		IsVerified: user.IsVerified,
	}
	if err := db.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// customerMatch builds the lookup predicate for linking an account to an
// existing customer profile. Empty fields are left out of the predicate:
// phone-provider accounts carry an empty email, and matching on it would
// link every such account to the same profile. An empty condition means
// there is nothing safe to match on.
func customerMatch(email, phone string) (string, []interface{}) {
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if email != "" {
		conds = append(conds, "email = ?")
		args = append(args, email)
	}
	if phone != "" {
		conds = append(conds, "phone = ?")
		args = append(args, phone)
	}
	return strings.Join(conds, " OR "), args
}

// linkCustomer creates or links the customer profile for a freshly created
// account, matching an existing profile by email or phone. Best effort:
// callers log the returned error and move on.
func linkCustomer(db *gorm.DB, user *models.User) error {
	cond, args := customerMatch(user.Email, user.Phone)
	if cond == "" {
		return db.Create(&models.Customer{
			UserID:     user.ID,
			Name:       user.Name,
			IsVerified: user.IsVerified,
		}).Error
	}

	var existing models.Customer
	err := db.Where(cond, args...).First(&existing).Error
	if err == nil {
		return db.Model(&existing).Updates(map[string]interface{}{
			"user_id":     user.ID,
			"email":       user.Email,
			"phone":       user.Phone,
			"name":        user.Name,
			"is_verified": user.IsVerified,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	return db.Create(&models.Customer{
		UserID:     user.ID,
		Email:      user.Email,
		Phone:      user.Phone,
		Name:       user.Name,
		IsVerified: user.IsVerified,
	}).Error
}

// rememberDevice replaces the account's device token list with the MRU
// list that results from pushing the supplied token to the front.
func rememberDevice(db *gorm.DB, user *models.User, token, device string) error {
	if token == "" {
		return nil
	}

	var tokens []models.DeviceToken
	if err := db.Where("user_id = ?", user.ID).
		Order("last_used_at desc").Find(&tokens).Error; err != nil {
		return err
	}

	updated := models.PushDeviceToken(tokens, user.ID, token, device, nowFunc())

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.DeviceToken{}).Error; err != nil {
			return err
		}
		for i := range updated {
			entry := updated[i]
			entry.ID = uuid.Nil
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func accountSummary(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"phone":       user.Phone,
		"role":        user.Role,
		"provider":    user.Provider,
		"is_verified": user.IsVerified,
	}
}
