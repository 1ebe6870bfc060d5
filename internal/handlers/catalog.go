package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/models"
)

// CatalogHandler manages brand resources.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListBrands returns all brands sorted by name. Public.
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	var brands []models.Brand
	if err := h.db.Order("name asc").Find(&brands).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": brands})
}

// GetBrand returns a single brand by ID.
func (h *CatalogHandler) GetBrand(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var brand models.Brand
	if err := h.db.First(&brand, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "brand not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": brand})
}

type brandRequest struct {
	Name string `json:"name"`
}

// CreateBrand persists a new brand. The LOWER(name) unique index is the
// source of truth for duplicates; the lookup here is a fast path.
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	var req brandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "brand name is required")
	}

	var existing models.Brand
	if err := h.db.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "brand name already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	brand := models.Brand{Name: name}
	if err := h.db.Create(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "brand name already exists")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Brand created successfully",
		"data":    brand,
	})
}

// UpdateBrand renames a brand.
func (h *CatalogHandler) UpdateBrand(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req brandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "brand name is required")
	}

	var brand models.Brand
	if err := h.db.First(&brand, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "brand not found")
		}
		return err
	}

	var dup models.Brand
	if err := h.db.Where("LOWER(name) = LOWER(?) AND id <> ?", name, id).First(&dup).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "brand name already exists")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	brand.Name = name
	if err := h.db.Save(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "brand name already exists")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Brand updated successfully",
		"data":    brand,
	})
}

// DeleteBrand removes a brand by ID.
func (h *CatalogHandler) DeleteBrand(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Brand{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "brand not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Brand deleted successfully"})
}
