package models

import "time"

type EmailVerificationToken struct {
	Digest    string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (EmailVerificationToken) TableName() string {
	return "email_verification_tokens"
}
