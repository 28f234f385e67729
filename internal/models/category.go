package models

type Category struct {
	BaseModel

	Name     string `gorm:"size:50;not null"`
	ParentID *uint  `gorm:"index"`
	IsActive bool   `gorm:"not null;default:true"`

	// Relationships
	Parent   *Category `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
