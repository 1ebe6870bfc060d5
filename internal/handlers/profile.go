package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/middleware"
	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/utils"
)

// ProfileHandler manages the authenticated collector's own profile.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// GetProfile returns the caller's full account record sans password.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	collector, ok := middleware.CurrentCollector(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":            collector.ID,
			"email":         collector.Email,
			"name":          collector.Name,
			"year_of_birth": collector.YearOfBirth,
			"gender":        collector.Gender,
			"avatar":        collector.Avatar,
			"auth_provider": collector.AuthProvider,
			"is_admin":      collector.IsAdmin,
			"is_deleted":    collector.IsDeleted,
			"delete_reason": collector.DeleteReason,
			"created_at":    collector.CreatedAt,
			"updated_at":    collector.UpdatedAt,
		},
	})
}

type updateProfileRequest struct {
	Name        string `json:"name"`
	YearOfBirth *int   `json:"year_of_birth" validate:"omitempty,gte=1900,lte=2100"`
	Gender      string `json:"gender" validate:"omitempty,oneof=Male Female LGBT"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"omitempty,min=6"`
}

// UpdateProfile applies partial profile updates and optionally changes the
// password when both old and new values are supplied.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	collector, ok := middleware.CurrentCollector(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.YearOfBirth != nil {
		updates["year_of_birth"] = *req.YearOfBirth
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}

	if req.NewPassword != "" {
		if !utils.CheckPassword(collector.PasswordHash, req.OldPassword) {
			return fiber.NewError(fiber.StatusUnauthorized, "old password incorrect")
		}

		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.Collector{}).Where("id = ?", collector.ID).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}
