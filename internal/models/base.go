package models

import "time"

// BaseModel is shared by all persisted entities. Deletes are hard deletes:
// cascade behavior lives in the foreign key constraints, not in soft-delete
// bookkeeping.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
