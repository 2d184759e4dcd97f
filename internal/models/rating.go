package models

type Rating struct {
	BaseModel

	UserID  uint   `gorm:"not null;uniqueIndex:idx_user_store_rating"`
	StoreID uint   `gorm:"not null;uniqueIndex:idx_user_store_rating"`
	Score   int    `gorm:"not null;check:score >= 1 AND score <= 5"`
	Comment string `gorm:"size:1000"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Store Store `gorm:"foreignKey:StoreID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
