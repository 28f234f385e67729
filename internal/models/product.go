package models

import "github.com/shopspring/decimal"

type Product struct {
	BaseModel

	Name        string          `gorm:"size:100;not null"`
	Description string          `gorm:"size:500"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null;check:price >= 0"`
	ImageURL    *string         `gorm:"size:200"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"`
	Rating      float64         `gorm:"not null;default:0"` // derived from active reviews
	IsActive    bool            `gorm:"not null;default:true;index"`
	CategoryID  *uint           `gorm:"index"`
	SellerID    uint            `gorm:"not null;index"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID"`
	Seller   *User     `gorm:"foreignKey:SellerID"`
	Reviews  []Review  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
