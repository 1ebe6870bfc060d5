package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/services"
	"github.com/example/parfumier/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db       *gorm.DB
	telegram *services.TelegramService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, telegram *services.TelegramService) *AdminHandler {
	return &AdminHandler{db: db, telegram: telegram}
}

// DashboardStats returns aggregate counts plus the brand-resolved perfume
// list for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var perfumesCount int64
	if err := h.db.Model(&models.Perfume{}).Count(&perfumesCount).Error; err != nil {
		return err
	}

	var brandsCount int64
	if err := h.db.Model(&models.Brand{}).Count(&brandsCount).Error; err != nil {
		return err
	}

	var collectorsCount int64
	if err := h.db.Model(&models.Collector{}).Count(&collectorsCount).Error; err != nil {
		return err
	}

	var perfumes []models.Perfume
	if err := h.db.Preload("Brand").Order("created_at desc").Find(&perfumes).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Dashboard data fetched successfully",
		"data": fiber.Map{
			"stats": fiber.Map{
				"perfumes_count":   perfumesCount,
				"brands_count":     brandsCount,
				"collectors_count": collectorsCount,
			},
			"perfumes": perfumes,
		},
	})
}

// ListCollectors returns active and banned collectors with catalog counts.
func (h *AdminHandler) ListCollectors(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var active []models.Collector
	if err := h.db.Where("is_deleted = ?", false).
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&active).Error; err != nil {
		return err
	}

	var banned []models.Collector
	if err := h.db.Where("is_deleted = ?", true).
		Order("updated_at desc").
		Find(&banned).Error; err != nil {
		return err
	}

	var perfumesCount, brandsCount, collectorsCount int64
	if err := h.db.Model(&models.Perfume{}).Count(&perfumesCount).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Brand{}).Count(&brandsCount).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Collector{}).Count(&collectorsCount).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"active_collectors":  active,
			"deleted_collectors": banned,
			"stats": fiber.Map{
				"perfumes_count":   perfumesCount,
				"brands_count":     brandsCount,
				"collectors_count": collectorsCount,
			},
		},
	})
}

type banRequest struct {
	Reason string `json:"reason"`
}

// BanCollector soft-deletes an account with a reason. Already-issued tokens
// stay cryptographically valid but the auth middleware rejects banned
// accounts on every protected route.
func (h *AdminHandler) BanCollector(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req banRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var collector models.Collector
	if err := h.db.First(&collector, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "collector not found")
		}
		return err
	}

	updates := map[string]interface{}{
		"is_deleted":    true,
		"delete_reason": req.Reason,
	}
	if err := h.db.Model(&collector).Updates(updates).Error; err != nil {
		return err
	}

	h.telegram.NotifyBan(collector.Email, req.Reason, true)

	return c.JSON(fiber.Map{"success": true, "message": "Collector banned successfully"})
}

// RestoreCollector clears the soft-delete flag and reason.
func (h *AdminHandler) RestoreCollector(c *fiber.Ctx) error {
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

	updates := map[string]interface{}{
		"is_deleted":    false,
		"delete_reason": "",
	}
	if err := h.db.Model(&collector).Updates(updates).Error; err != nil {
		return err
	}

	h.telegram.NotifyBan(collector.Email, "", false)

	return c.JSON(fiber.Map{"success": true, "message": "Collector restored successfully"})
}
