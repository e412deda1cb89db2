package models

import "time"

// PasswordResetToken stores the sha256 digest of a reset token, never the
// raw value. UsedAt marks consumption; tokens are single-use.
type PasswordResetToken struct {
	Digest    string     `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
