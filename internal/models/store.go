package models

type Store struct {
	BaseModel

	Name    string `gorm:"size:100;not null"`
	Email   string `gorm:"size:255;uniqueIndex;not null"`
	Address string `gorm:"size:400;not null"`
	OwnerID *uint  `gorm:"index"`

	// Relationships
	Owner   *User    `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Ratings []Rating `gorm:"foreignKey:StoreID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
