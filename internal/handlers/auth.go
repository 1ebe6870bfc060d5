package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/config"
	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/services"
	"github.com/example/parfumier/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	google   services.GoogleVerifier
	telegram *services.TelegramService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, google services.GoogleVerifier, telegram *services.TelegramService) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, google: google, telegram: telegram}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Name        string `json:"name"`
	YearOfBirth *int   `json:"year_of_birth" validate:"omitempty,gte=1900,lte=2100"`
	Gender      string `json:"gender" validate:"omitempty,oneof=Male Female LGBT"`
}

// Register creates a new local collector account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	email := NormalizeEmail(req.Email)

	var existing models.Collector
	if err := h.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	collector := models.Collector{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		YearOfBirth:  req.YearOfBirth,
		Gender:       req.Gender,
		AuthProvider: models.AuthProviderLocal,
	}

	if err := h.db.Create(&collector).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "email already exists")
		}
		return err
	}

	h.telegram.NotifyRegistration(collector.Email, collector.AuthProvider)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration successful! Please log in.",
		"data": fiber.Map{
			"id":    collector.ID,
			"email": collector.Email,
			"name":  collector.Name,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates a local account and issues a session token.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	var collector models.Collector
	if err := h.db.Where("email = ?", NormalizeEmail(req.Email)).First(&collector).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "email not found")
		}
		return err
	}

	if collector.IsDeleted {
		reason := collector.DeleteReason
		if reason == "" {
			reason = "Unknown reason"
		}
		return fiber.NewError(fiber.StatusForbidden, fmt.Sprintf("Account locked: %s", reason))
	}

	if !utils.CheckPassword(collector.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "incorrect password")
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, collector.ID, collector.Email, collector.IsAdmin, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful!",
		"token":   token,
		"data": fiber.Map{
			"id":       collector.ID,
			"email":    collector.Email,
			"name":     collector.Name,
			"is_admin": collector.IsAdmin,
		},
	})
}

type googleLoginRequest struct {
	TokenID string `json:"token_id" validate:"required"`
}

// GoogleLogin verifies a Google ID token, creating or linking the matching
// collector account, and issues a session token of the same shape as Login.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req googleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	payload, err := h.google.Verify(c.Context(), req.TokenID)
	if err != nil {
		if errors.Is(err, services.ErrGoogleTokenExpired) {
			return fiber.NewError(fiber.StatusUnauthorized, "google token has expired, please try again")
		}
		return fiber.NewError(fiber.StatusUnauthorized, "invalid google token")
	}

	email := NormalizeEmail(payload.Email)

	var collector models.Collector
	err = h.db.Where("email = ?", email).First(&collector).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		collector = models.Collector{
			Email:        email,
			Name:         payload.Name,
			GoogleID:     &payload.Subject,
			Avatar:       payload.Picture,
			AuthProvider: models.AuthProviderGoogle,
		}
		if err := h.db.Create(&collector).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusBadRequest, "account already exists")
			}
			return err
		}
		h.telegram.NotifyRegistration(collector.Email, collector.AuthProvider)
	case err != nil:
		return err
	default:
		// Backfill OAuth identity on accounts that registered locally first.
		updates := map[string]interface{}{}
		if collector.GoogleID == nil {
			updates["google_id"] = payload.Subject
			updates["auth_provider"] = models.AuthProviderGoogle
		}
		if collector.Avatar == "" && payload.Picture != "" {
			updates["avatar"] = payload.Picture
		}
		if len(updates) > 0 {
			if err := h.db.Model(&collector).Updates(updates).Error; err != nil {
				return err
			}
		}
	}

	if collector.IsDeleted {
		reason := collector.DeleteReason
		if reason == "" {
			reason = "Unknown reason"
		}
		return fiber.NewError(fiber.StatusForbidden, fmt.Sprintf("Account locked: %s", reason))
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, collector.ID, collector.Email, collector.IsAdmin, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login with Google successful!",
		"token":   token,
		"data": fiber.Map{
			"id":       collector.ID,
			"email":    collector.Email,
			"name":     collector.Name,
			"avatar":   collector.Avatar,
			"is_admin": collector.IsAdmin,
		},
	})
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
