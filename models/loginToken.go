package models

import (
	"time"

	"gorm.io/gorm"
)

// 刪除LoginToken即撤銷該token
type LoginToken struct {
	gorm.Model
	Token          string `gorm:"type:varchar(768);index"`
	ExpirationTime time.Time
	UserID         uint
	Role           Role `gorm:"type:varchar(16)"`
}
