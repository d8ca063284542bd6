package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/config"
	"github.com/example/veloria/internal/models"
	"github.com/example/veloria/internal/services"
	"github.com/example/veloria/internal/utils"
)

// PhoneAuthHandler implements the Firebase-verified phone flow, which
// bypasses OTP entirely: the assertion token is the proof of phone control.
type PhoneAuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	verifier services.PhoneVerifier
	telegram *services.TelegramService
	sessions *services.SessionService
	log      *zap.Logger
}

// NewPhoneAuthHandler constructs a PhoneAuthHandler.
func NewPhoneAuthHandler(db *gorm.DB, cfg *config.Config, verifier services.PhoneVerifier, telegram *services.TelegramService, sessions *services.SessionService, log *zap.Logger) *PhoneAuthHandler {
	return &PhoneAuthHandler{db: db, cfg: cfg, verifier: verifier, telegram: telegram, sessions: sessions, log: log}
}

type phoneRegisterRequest struct {
	PhoneNumber string `json:"phone_number"`
	Name        string `json:"name"`
	IDToken     string `json:"id_token"`
	FCMToken    string `json:"fcm_token"`
	Device      string `json:"device"`
}

// Register creates a pre-verified account from a phone assertion.
func (h *PhoneAuthHandler) Register(c *fiber.Ctx) error {
	var req phoneRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	switch {
	case req.PhoneNumber == "":
		return fiber.NewError(fiber.StatusBadRequest, "phone_number is required")
	case req.Name == "":
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	case req.IDToken == "":
		return fiber.NewError(fiber.StatusBadRequest, "id_token is required")
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if !utils.IsStrictPhone(phone) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phone number format")
	}

	assertion, err := h.verifier.VerifyAssertion(c.Context(), req.IDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "phone verification failed")
	}
	if assertion.PhoneNumber != phone {
		return fiber.NewError(fiber.StatusBadRequest, "phone number does not match the verified assertion")
	}

	var existing models.User
	err = h.db.First(&existing, "phone = ?", phone).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "an account with this phone already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	user := models.User{
		Name:       req.Name,
		Phone:      phone,
		Role:       models.RoleUser,
		Provider:   models.ProviderPhone,
		IsVerified: true,
		IsActive:   true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	if err := linkCustomer(h.db, &user); err != nil {
		h.log.Warn("customer link failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	dispatch(h.log, "admin new-user alert", func() error {
		return h.telegram.NotifyNewUser(user.Name, user.Email, user.Phone, user.Provider)
	})

	return h.respondWithSession(c, &user, req.FCMToken, req.Device, fiber.StatusCreated)
}

type phoneLoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	IDToken     string `json:"id_token"`
	FCMToken    string `json:"fcm_token"`
	Device      string `json:"device"`
}

// Login authenticates an existing phone account from a fresh assertion.
func (h *PhoneAuthHandler) Login(c *fiber.Ctx) error {
	var req phoneLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.PhoneNumber == "" || req.IDToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "phone_number and id_token are required")
	}

	phone := strings.TrimSpace(req.PhoneNumber)

	assertion, err := h.verifier.VerifyAssertion(c.Context(), req.IDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "phone verification failed")
	}
	if assertion.PhoneNumber != phone {
		return fiber.NewError(fiber.StatusBadRequest, "phone number does not match the verified assertion")
	}

	var user models.User
	if err := h.db.First(&user, "phone = ?", phone).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success":           false,
				"error":             "no account for this phone number",
				"needsRegistration": true,
			})
		}
		return err
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "account is deactivated")
	}

	return h.respondWithSession(c, &user, req.FCMToken, req.Device, fiber.StatusOK)
}

func (h *PhoneAuthHandler) respondWithSession(c *fiber.Ctx, user *models.User, fcmToken, device string, status int) error {
	now := time.Now()
	if err := h.db.Model(user).Update("last_login_at", now).Error; err != nil {
		h.log.Warn("last login update failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	if err := rememberDevice(h.db, user, fcmToken, device); err != nil {
		h.log.Warn("device token update failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	if h.sessions != nil {
		if err := h.sessions.Register(user.ID, token, h.cfg.TokenExpires); err != nil {
			h.log.Warn("session tracking failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"user":    accountSummary(user),
		"token":   token,
	})
}
