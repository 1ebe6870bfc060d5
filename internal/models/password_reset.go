package models

import "time"

// PasswordResetToken tracks a single forgot-password attempt. Tokens expire
// after a short window and may only be used once.
type PasswordResetToken struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Token     string     `gorm:"uniqueIndex" json:"token"`
	Code      string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
