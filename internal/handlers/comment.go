package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/middleware"
	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/utils"
)

// CommentHandler manages perfume comments. Every operation is scoped to the
// owning perfume; comments have no life of their own.
type CommentHandler struct {
	db *gorm.DB
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

type addCommentRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content" validate:"required"`
}

// AddComment appends a rating+text comment. Admins may not author comments,
// and each collector gets at most one comment per perfume; the composite
// unique index backs up the duplicate check under concurrent requests.
func (h *CommentHandler) AddComment(c *fiber.Ctx) error {
	collector, ok := middleware.CurrentCollector(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	perfumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid perfume id")
	}

	var perfume models.Perfume
	if err := h.db.First(&perfume, "id = ?", perfumeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "perfume not found")
		}
		return err
	}

	if collector.IsAdmin {
		return fiber.NewError(fiber.StatusForbidden, "admins cannot comment on perfumes")
	}

	var count int64
	if err := h.db.Model(&models.Comment{}).
		Where("perfume_id = ? AND author_id = ?", perfumeID, collector.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fiber.NewError(fiber.StatusBadRequest, "you have already commented on this perfume")
	}

	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating < 1 || req.Rating > 3 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be 1, 2, or 3")
	}

	if msg := utils.ValidateStruct(req); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	comment := models.Comment{
		PerfumeID: perfumeID,
		AuthorID:  collector.ID,
		Rating:    req.Rating,
		Content:   req.Content,
	}

	if err := h.db.Create(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fiber.NewError(fiber.StatusBadRequest, "you have already commented on this perfume")
		}
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Comment added successfully",
		"data":    comment,
	})
}

type updateCommentRequest struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}

// UpdateComment applies a partial edit. Only the author may edit, admins
// included.
func (h *CommentHandler) UpdateComment(c *fiber.Ctx) error {
	collector, ok := middleware.CurrentCollector(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	comment, err := h.loadComment(c)
	if err != nil {
		return err
	}

	if comment.AuthorID != collector.ID {
		return fiber.NewError(fiber.StatusForbidden, "you cannot edit this comment")
	}

	var req updateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 3) {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be 1, 2, or 3")
	}

	if req.Rating != nil {
		comment.Rating = *req.Rating
	}
	if req.Content != nil {
		comment.Content = *req.Content
	}

	if err := h.db.Save(comment).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Comment updated successfully",
		"data":    comment,
	})
}

// DeleteComment removes a comment. Allowed for the author and for admins.
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	collector, ok := middleware.CurrentCollector(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	comment, err := h.loadComment(c)
	if err != nil {
		return err
	}

	if comment.AuthorID != collector.ID && !collector.IsAdmin {
		return fiber.NewError(fiber.StatusForbidden, "you cannot delete this comment")
	}

	if err := h.db.Delete(comment).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Comment deleted successfully"})
}

// loadComment resolves the perfume and comment path parameters, confirming
// the comment belongs to the perfume.
func (h *CommentHandler) loadComment(c *fiber.Ctx) (*models.Comment, error) {
	perfumeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid perfume id")
	}

	commentID, err := uuid.Parse(c.Params("commentId"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid comment id")
	}

	var perfume models.Perfume
	if err := h.db.First(&perfume, "id = ?", perfumeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "perfume not found")
		}
		return nil, err
	}

	var comment models.Comment
	if err := h.db.First(&comment, "id = ? AND perfume_id = ?", commentID, perfumeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fiber.NewError(fiber.StatusNotFound, "comment not found")
		}
		return nil, err
	}

	return &comment, nil
}
