package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/veloria/internal/config"
	"github.com/example/veloria/internal/mailer"
	"github.com/example/veloria/internal/models"
	"github.com/example/veloria/internal/otp"
	"github.com/example/veloria/internal/services"
	"github.com/example/veloria/internal/utils"
)

// AuthHandler bundles dependencies for the email-OTP authentication flow.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	mail     mailer.Service
	push     *services.PushService
	telegram *services.TelegramService
	sessions *services.SessionService
	log      *zap.Logger
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mail mailer.Service, push *services.PushService, telegram *services.TelegramService, sessions *services.SessionService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mail: mail, push: push, telegram: telegram, sessions: sessions, log: log}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Register creates a new unverified account and issues its first OTP.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	switch {
	case req.Email == "":
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	case req.Password == "":
		return fiber.NewError(fiber.StatusBadRequest, "password is required")
	case req.Name == "":
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	case req.PhoneNumber == "":
		return fiber.NewError(fiber.StatusBadRequest, "phone_number is required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.PhoneNumber)

	if !utils.IsEmail(email) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
	}
	if !utils.IsPhone(phone) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid phone number format")
	}

	role := models.RoleUser
	if h.cfg.AdminEmail != "" && email == h.cfg.AdminEmail {
		role = models.RoleAdmin
	}

	// One account namespace: the same email or phone may not exist under
	// any role.
	var existing models.User
	err := h.db.Where("email = ? OR phone = ?", email, phone).First(&existing).Error
	if err == nil {
		return fiber.NewError(fiber.StatusConflict, "an account with this email or phone already exists")
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		Provider:     models.ProviderLocal,
		IsVerified:   false,
		IsActive:     true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	entry, err := otp.Issue(user.ID, time.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}
	if err := h.db.Create(&entry).Error; err != nil {
		return err
	}

	// The account row is the atomic write; everything from here on is
	// advisory.
	if err := linkCustomer(h.db, &user); err != nil {
		h.log.Warn("customer link failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	code := entry.Code
	dispatch(h.log, "otp email", func() error {
		return h.sendOTPEmail(user.Email, user.Name, code)
	})
	dispatch(h.log, "admin new-user alert", func() error {
		return h.telegram.NotifyNewUser(user.Name, user.Email, user.Phone, user.Provider)
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    accountSummary(&user),
		"otpSent": true,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Verify checks a submitted OTP against the account's code history.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and otp are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "account not found")
		}
		return err
	}

	if user.IsVerified {
		return c.JSON(fiber.Map{
			"success":         true,
			"alreadyVerified": true,
			"message":         "account is already verified",
		})
	}

	var entries []models.OTPCode
	if err := h.db.Where("user_id = ?", user.ID).
		Order("created_at asc").Find(&entries).Error; err != nil {
		return err
	}

	switch otp.Verify(entries, req.OTP, time.Now()) {
	case otp.VerifyNoCodes:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "no verification code on file, request a new one",
		})
	case otp.VerifyExpired:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "verification code has expired",
			"expired": true,
		})
	case otp.VerifyInvalid:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid verification code",
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", user.ID).Delete(&models.OTPCode{}).Error
	})
	if err != nil {
		return err
	}
	user.IsVerified = true

	if user.Role == models.RoleUser {
		if err := h.db.Model(&models.Customer{}).
			Where("user_id = ?", user.ID).
			Update("is_verified", true).Error; err != nil {
			h.log.Warn("customer verification sync failed",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		}

		userID, name := user.ID, user.Name
		dispatch(h.log, "welcome notification", func() error {
			return h.push.NotifyWelcome(userID, name)
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    accountSummary(&user),
	})
}

type resendRequest struct {
	Email string `json:"email"`
}

// Resend issues a fresh OTP, keeping the account's code history bounded.
func (h *AuthHandler) Resend(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := h.db.First(&user, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "account not found")
		}
		return err
	}

	if user.IsVerified {
		return c.JSON(fiber.Map{
			"success":         true,
			"alreadyVerified": true,
			"message":         "account is already verified",
		})
	}

	var entries []models.OTPCode
	if err := h.db.Where("user_id = ?", user.ID).
		Order("created_at asc").Find(&entries).Error; err != nil {
		return err
	}

	_, evict := otp.Trim(entries, otp.MaxHistory)

	entry, err := otp.Issue(user.ID, time.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		for _, old := range evict {
			if err := tx.Delete(&models.OTPCode{}, "id = ?", old.ID).Error; err != nil {
				return err
			}
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return err
	}

	code := entry.Code
	dispatch(h.log, "otp email", func() error {
		return h.sendOTPEmail(user.Email, user.Name, code)
	})

	return c.JSON(fiber.Map{
		"success": true,
		"otpSent": true,
	})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	FCMToken   string `json:"fcm_token"`
	Device     string `json:"device"`
}

// Login authenticates by email or phone and issues a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Identifier == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "identifier and password are required")
	}

	identifier := strings.TrimSpace(req.Identifier)

	var user models.User
	var err error
	switch {
	case utils.IsEmail(identifier):
		err = h.db.First(&user, "email = ?", strings.ToLower(identifier)).Error
	case utils.IsPhone(identifier):
		err = h.db.First(&user, "phone = ?", identifier).Error
	default:
		return fiber.NewError(fiber.StatusBadRequest, "identifier must be an email or phone number")
	}

	found := err == nil
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}

	if denial := loginGate(found, &user, req.Password); denial != nil {
		payload := fiber.Map{"success": false, "error": denial.message}
		if denial.needsVerification {
			payload["needsVerification"] = true
		}
		if denial.usePhoneLogin {
			payload["usePhoneLogin"] = true
		}
		return c.Status(denial.status).JSON(payload)
	}

	now := time.Now()
	if err := h.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		h.log.Warn("last login update failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	if err := rememberDevice(h.db, &user, req.FCMToken, req.Device); err != nil {
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

	return c.JSON(fiber.Map{
		"success": true,
		"user":    accountSummary(&user),
		"token":   token,
	})
}

type loginDenial struct {
	status            int
	message           string
	needsVerification bool
	usePhoneLogin     bool
}

// invalidCredentials is shared by the not-found and wrong-password branches
// so this path does not reveal whether the account exists. The inactive,
// unverified and phone-provider branches deliberately stay distinct.
const invalidCredentials = "invalid credentials"

// loginGate applies the login business rules in order and returns the
// denial for the first one that fails, or nil when the login may proceed.
func loginGate(found bool, user *models.User, password string) *loginDenial {
	if !found {
		return &loginDenial{status: fiber.StatusUnauthorized, message: invalidCredentials}
	}
	if !user.IsActive {
		return &loginDenial{status: fiber.StatusForbidden, message: "account is deactivated"}
	}
	if !user.IsVerified {
		return &loginDenial{
			status:            fiber.StatusForbidden,
			message:           "account is not verified",
			needsVerification: true,
		}
	}
	if user.Provider != models.ProviderLocal && user.PasswordHash == "" {
		return &loginDenial{
			status:        fiber.StatusBadRequest,
			message:       "this account uses phone sign-in and has no password",
			usePhoneLogin: true,
		}
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return &loginDenial{status: fiber.StatusUnauthorized, message: invalidCredentials}
	}
	return nil
}

func (h *AuthHandler) sendOTPEmail(toEmail, toName, code string) error {
	subject := "Your Veloria verification code"
	text := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	html := fmt.Sprintf("<p>Your verification code is <b>%s</b>.</p><p>It expires in 10 minutes.</p>", code)
	return h.mail.Send(toEmail, toName, subject, text, html)
}
