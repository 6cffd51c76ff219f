package models

type Crop struct {
	BaseModel

	Name              string  `gorm:"not null;index"`
	Description       string
	Category          string  `gorm:"not null;default:'other';index"`
	Price             float64 `gorm:"type:decimal(10,2);not null"`
	QuantityAvailable int     `gorm:"not null"`
	ImagePath         string
	FarmerID          uint    `gorm:"not null;index"`

	// Relationships
	Farmer User    `gorm:"foreignKey:FarmerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Orders []Order `gorm:"foreignKey:CropID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
