package models

import (
	"math"

	"github.com/google/uuid"
)

// Perfume is a catalog entry. Comments are owned by the perfume and are
// removed with it.
type Perfume struct {
	BaseModel
	Name           string    `json:"name"`
	ImageURL       string    `json:"image_url"`
	Price          float64   `json:"price"`
	Concentration  string    `json:"concentration"` // Extrait, EDP, EDT
	Description    string    `json:"description"`
	Ingredients    string    `json:"ingredients"`
	Volume         float64   `json:"volume"`
	TargetAudience string    `json:"target_audience"` // male/female/unisex
	BrandID        uuid.UUID `gorm:"type:uuid;index" json:"brand_id"`
	Brand          *Brand    `json:"brand,omitempty"`
	Comments       []Comment `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// AverageRating computes the mean comment rating rounded to one decimal.
// A perfume without comments rates 0.
func (p *Perfume) AverageRating() float64 {
	if len(p.Comments) == 0 {
		return 0
	}

	sum := 0
	for _, comment := range p.Comments {
		sum += comment.Rating
	}

	avg := float64(sum) / float64(len(p.Comments))
	return math.Round(avg*10) / 10
}

// Comment is a single rating plus text left by a collector. The composite
// unique index keeps one comment per collector per perfume.
type Comment struct {
	BaseModel
	PerfumeID uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_comments_perfume_author" json:"perfume_id"`
	AuthorID  uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_comments_perfume_author" json:"author_id"`
	Author    *Collector `json:"author,omitempty"`
	Rating    int        `json:"rating"`
	Content   string     `json:"content"`
}
