package models

// Gender values accepted on collector profiles.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderLGBT   = "LGBT"
)

// Auth providers a collector account can originate from.
const (
	AuthProviderLocal  = "local"
	AuthProviderGoogle = "google"
)

// Collector represents a customer account. Accounts are never hard-deleted;
// banning sets IsDeleted together with a reason.
type Collector struct {
	BaseModel
	Email        string  `gorm:"uniqueIndex" json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	YearOfBirth  *int    `json:"year_of_birth,omitempty"`
	Gender       string  `json:"gender"`
	GoogleID     *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	Avatar       string  `json:"avatar,omitempty"`
	AuthProvider string  `gorm:"default:local" json:"auth_provider"`
	IsAdmin      bool    `json:"is_admin"`
	IsDeleted    bool    `json:"is_deleted"`
	DeleteReason string  `json:"delete_reason"`
}
