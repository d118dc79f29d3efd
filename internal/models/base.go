package models

import "time"

// BaseModel defines the common fields for all models.
// Records in this service are never deleted, so there is no soft-delete column.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
