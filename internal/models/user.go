package models

import "github.com/farmconnect-dev/farmconnect/internal/types"

type User struct {
	BaseModel

	Username     string     `gorm:"not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Role         types.Role `gorm:"type:varchar(16);not null;default:'buyer'"`
	Bio          string
	ProfilePic   string

	// Relationships
	Crops      []Crop      `gorm:"foreignKey:FarmerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Orders     []Order     `gorm:"foreignKey:BuyerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ForumPosts []ForumPost `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Alerts     []Alert     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
