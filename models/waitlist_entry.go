package models

import "time"

type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
