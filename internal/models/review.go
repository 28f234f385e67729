package models

import "time"

type Review struct {
	BaseModel

	UserID      uint      `gorm:"not null;index"`
	ProductID   uint      `gorm:"not null;index"`
	Comment     *string   `gorm:"type:text"`
	CommentDate time.Time `gorm:"not null"`
	Grade       int       `gorm:"not null;check:grade >= 1 AND grade <= 5"`
	IsActive    bool      `gorm:"not null;default:true"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID"`
	Product *Product `gorm:"foreignKey:ProductID"`
}
