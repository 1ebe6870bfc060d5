package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/services"
	"github.com/example/parfumier/internal/utils"
)

// PasswordResetHandler manages the forgot-password flow for local accounts.
type PasswordResetHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, telegram *services.TelegramService) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, telegram: telegram}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword validates the account, generates a 6-digit code, hands it
// to the admin chat for out-of-band delivery, and returns a reset token.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	email := NormalizeEmail(req.Email)

	var collector models.Collector
	if err := h.db.Where("email = ?", email).First(&collector).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "email not found")
		}
		return err
	}

	if collector.AuthProvider == models.AuthProviderGoogle && collector.PasswordHash == "" {
		return fiber.NewError(fiber.StatusBadRequest, "account uses Google sign-in")
	}

	code, err := generateResetCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}
	resetToken := hex.EncodeToString(tokenBytes)

	// Expire any previous unused reset tokens for this account.
	if err := h.db.Model(&models.PasswordResetToken{}).
		Where("email = ? AND used_at IS NULL", email).
		Update("expires_at", time.Now()).Error; err != nil {
		return err
	}

	record := models.PasswordResetToken{
		Email:     email,
		Token:     resetToken,
		Code:      code,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := h.db.Create(&record).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to create reset token")
	}

	h.telegram.NotifyResetCode(email, code)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Reset code issued",
		"token":   resetToken,
	})
}

type verifyResetCodeRequest struct {
	Token string `json:"token" validate:"required"`
	Code  string `json:"code" validate:"required"`
}

// VerifyResetCode checks the code the user received.
func (h *PasswordResetHandler) VerifyResetCode(c *fiber.Ctx) error {
	var req verifyResetCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	record, err := h.loadResetToken(req.Token)
	if err != nil {
		return err
	}

	if record.Code != req.Code {
		return fiber.NewError(fiber.StatusBadRequest, "invalid verification code")
	}

	record.Verified = true
	if err := h.db.Save(record).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"verified": true,
		"token":    record.Token,
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ResetPassword updates the account password after code verification.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	record, err := h.loadResetToken(req.Token)
	if err != nil {
		return err
	}

	if !record.Verified {
		return fiber.NewError(fiber.StatusBadRequest, "code not verified yet")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&models.Collector{}).
		Where("email = ?", record.Email).
		Update("password_hash", hash).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to update password")
	}

	// The token must not stay replayable after a successful reset.
	now := time.Now()
	record.UsedAt = &now
	if err := h.db.Save(record).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password updated successfully",
	})
}

func (h *PasswordResetHandler) loadResetToken(token string) (*models.PasswordResetToken, error) {
	var record models.PasswordResetToken
	if err := h.db.Where("token = ?", token).First(&record).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "invalid reset token")
		}
		return nil, err
	}

	if record.UsedAt != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "token already used")
	}

	if record.ExpiresAt.Before(time.Now()) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "token expired")
	}

	return &record, nil
}

func generateResetCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
