package models

type CartItem struct {
	BaseModel

	UserID    uint `gorm:"not null;uniqueIndex:idx_cart_items_user_product"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_cart_items_user_product"`
	Quantity  int  `gorm:"not null;check:quantity > 0"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID"`
	Product *Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// All lists the tables owned by the application, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Category{},
		&Product{},
		&Review{},
		&CartItem{},
	}
}
