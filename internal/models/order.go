package models

const (
	OrderPending   = "pending"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

type Order struct {
	BaseModel

	OrderNumber string  `gorm:"uniqueIndex"`
	BuyerID     uint    `gorm:"not null;index"`
	CropID      uint    `gorm:"not null;index"`
	Quantity    int     `gorm:"not null"`
	TotalPrice  float64 `gorm:"type:decimal(10,2);not null"`
	Status      string  `gorm:"not null;default:'pending'"`

	// Relationships
	Buyer User `gorm:"foreignKey:BuyerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Crop  Crop `gorm:"foreignKey:CropID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
