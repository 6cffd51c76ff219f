package models

type Alert struct {
	BaseModel

	Message   string `gorm:"not null"`
	Type      string `gorm:"not null;default:'other'"`
	Priority  string `gorm:"not null;default:'normal'"`
	ImagePath string
	UserID    *uint `gorm:"index"` // nil for admin-issued, global alerts

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
