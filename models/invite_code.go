package models

import "time"

// InviteCode is a single-use sign-up code. ClaimedBy is nil until the code
// is spent; a claimed code is never released or reassigned.
type InviteCode struct {
	Code      string     `gorm:"primaryKey;size:64" json:"code"`
	ClaimedBy *string    `gorm:"size:100" json:"claimed_by"`
	ClaimedAt *time.Time `json:"claimed_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (InviteCode) TableName() string {
	return "invite_codes"
}
