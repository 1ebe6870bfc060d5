package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/utils"
)

// CollectorHandler exposes collector account lookups and self-service
// mutations addressed by ID.
type CollectorHandler struct {
	db *gorm.DB
}

// NewCollectorHandler constructs CollectorHandler.
func NewCollectorHandler(db *gorm.DB) *CollectorHandler {
	return &CollectorHandler{db: db}
}

// GetCollector returns a collector's public profile.
func (h *CollectorHandler) GetCollector(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var collector models.Collector
	if err := h.db.First(&collector, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "collector not found")
		}
		return err
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
		},
	})
}

type updateCollectorRequest struct {
	Name        string `json:"name"`
	YearOfBirth *int   `json:"year_of_birth" validate:"omitempty,gte=1900,lte=2100"`
	Gender      string `json:"gender" validate:"omitempty,oneof=Male Female LGBT"`
}

// UpdateCollector lets a collector edit their own profile fields. The
// RequireSelf guard ensures the path ID matches the caller.
func (h *CollectorHandler) UpdateCollector(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCollectorRequest
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
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	result := h.db.Model(&models.Collector{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "collector not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// ChangePassword updates the caller's password after verifying the old one.
func (h *CollectorHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	var collector models.Collector
	if err := h.db.First(&collector, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "collector not found")
		}
		return err
	}

	if !utils.CheckPassword(collector.PasswordHash, req.OldPassword) {
		return fiber.NewError(fiber.StatusUnauthorized, "old password incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	if err := h.db.Model(&collector).Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "password changed successfully"})
}
