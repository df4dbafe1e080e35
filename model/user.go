package model

import "time"

// User represents an app account. Only the minimal fields the mobile client
// needs for its session are stored.
type User struct {
	ID           int64     `json:"id" bson:"_id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" bson:"name" gorm:"size:100"`
	Email        string    `json:"email" bson:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" bson:"password_hash" gorm:"size:255;not null"` // Not exposed in API responses
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
