package models

import "time"

// User is a chat participant. Username is unique and the first write for a
// given username wins.
type User struct {
	ID        UserID    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
