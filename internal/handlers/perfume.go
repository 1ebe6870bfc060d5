package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/utils"
)

// PerfumeHandler manages perfume catalog entries.
type PerfumeHandler struct {
	db *gorm.DB
}

// NewPerfumeHandler constructs PerfumeHandler.
func NewPerfumeHandler(db *gorm.DB) *PerfumeHandler {
	return &PerfumeHandler{db: db}
}

// ListPerfumes returns perfumes with optional search, filters, and price
// ordering. Comments are omitted from list views.
func (h *PerfumeHandler) ListPerfumes(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Perfume{})

	if q := c.Query("q"); q != "" {
		query = query.Where("name ILIKE ?", "%"+q+"%")
	}

	if v := c.Query("brand_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			query = query.Where("brand_id = ?", id)
		}
	}

	if gender := c.Query("gender"); gender != "" {
		query = query.Where("target_audience = ?", gender)
	}

	if concentration := c.Query("concentration"); concentration != "" {
		query = query.Where("concentration = ?", concentration)
	}

	switch c.Query("sort_price") {
	case "asc":
		query = query.Order("price asc")
	case "desc":
		query = query.Order("price desc")
	default:
		query = query.Order("created_at desc")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var perfumes []models.Perfume
	if err := query.Preload("Brand").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&perfumes).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    perfumes,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetPerfume loads a perfume with its brand, comments, comment authors, and
// the computed average rating.
func (h *PerfumeHandler) GetPerfume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var perfume models.Perfume
	if err := h.db.Preload("Brand").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc")
		}).
		Preload("Comments.Author").
		First(&perfume, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "perfume not found")
		}
		return err
	}

	avgRating := perfume.AverageRating()

	// Comment authors are projected down to their public fields; the full
	// collector record (email, flags) stays server-side.
	comments := make([]fiber.Map, 0, len(perfume.Comments))
	for _, comment := range perfume.Comments {
		entry := fiber.Map{
			"id":         comment.ID,
			"rating":     comment.Rating,
			"content":    comment.Content,
			"created_at": comment.CreatedAt,
			"updated_at": comment.UpdatedAt,
		}
		if comment.Author != nil {
			entry["author"] = fiber.Map{
				"id":     comment.Author.ID,
				"name":   comment.Author.Name,
				"avatar": comment.Author.Avatar,
			}
		} else {
			entry["author"] = fiber.Map{"id": comment.AuthorID}
		}
		comments = append(comments, entry)
	}
	perfume.Comments = nil

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"perfume":    perfume,
			"comments":   comments,
			"avg_rating": avgRating,
		},
	})
}

type perfumeRequest struct {
	Name           string  `json:"name" validate:"required"`
	ImageURL       string  `json:"image_url" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	Concentration  string  `json:"concentration" validate:"required"`
	Description    string  `json:"description" validate:"required"`
	Ingredients    string  `json:"ingredients" validate:"required"`
	Volume         float64 `json:"volume" validate:"gte=0"`
	TargetAudience string  `json:"target_audience" validate:"required"`
	BrandID        string  `json:"brand_id" validate:"required,uuid4"`
}

// CreatePerfume handles admin perfume creation.
func (h *PerfumeHandler) CreatePerfume(c *fiber.Ctx) error {
	var req perfumeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	brandID, err := h.resolveBrand(req.BrandID)
	if err != nil {
		return err
	}

	perfume := models.Perfume{
		Name:           req.Name,
		ImageURL:       req.ImageURL,
		Price:          req.Price,
		Concentration:  req.Concentration,
		Description:    req.Description,
		Ingredients:    req.Ingredients,
		Volume:         req.Volume,
		TargetAudience: req.TargetAudience,
		BrandID:        brandID,
	}

	if err := h.db.Create(&perfume).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Perfume created successfully",
		"data":    perfume,
	})
}

// UpdatePerfume replaces the catalog fields of an existing perfume.
func (h *PerfumeHandler) UpdatePerfume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var perfume models.Perfume
	if err := h.db.First(&perfume, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "perfume not found")
		}
		return err
	}

	var req perfumeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	brandID, err := h.resolveBrand(req.BrandID)
	if err != nil {
		return err
	}

	perfume.Name = req.Name
	perfume.ImageURL = req.ImageURL
	perfume.Price = req.Price
	perfume.Concentration = req.Concentration
	perfume.Description = req.Description
	perfume.Ingredients = req.Ingredients
	perfume.Volume = req.Volume
	perfume.TargetAudience = req.TargetAudience
	perfume.BrandID = brandID

	if err := h.db.Save(&perfume).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Perfume updated successfully",
		"data":    perfume,
	})
}

// DeletePerfume removes a perfume and, through the FK constraint, its
// comments. A second delete of the same ID reports not found.
func (h *PerfumeHandler) DeletePerfume(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Perfume{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "perfume not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "Perfume deleted successfully"})
}

func (h *PerfumeHandler) resolveBrand(raw string) (uuid.UUID, error) {
	brandID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid brand_id")
	}

	var brand models.Brand
	if err := h.db.First(&brand, "id = ?", brandID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "brand does not exist")
		}
		return uuid.Nil, err
	}

	return brandID, nil
}
