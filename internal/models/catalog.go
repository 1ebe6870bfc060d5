package models

// Brand is a perfume house. Name uniqueness is case-insensitive, enforced by
// a unique index on LOWER(name) created during migration.
type Brand struct {
	BaseModel
	Name     string    `json:"name"`
	Perfumes []Perfume `json:"perfumes,omitempty"`
}
