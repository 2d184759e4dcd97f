package models

type User struct {
	BaseModel

	Name         string `gorm:"size:60;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Address      string `gorm:"size:400;not null"`
	Role         string `gorm:"size:20;not null;default:user;index"`

	// Relationships
	OwnedStores []Store  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Ratings     []Rating `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
