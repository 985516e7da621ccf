package models

import "time"

// Folder rows form a tree via ParentID. Root folders have ParentID nil.
// Folders are never soft-deleted: recursive deletion removes the rows.
type Folder struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
