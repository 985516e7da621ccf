package models

import (
	"time"

	"gorm.io/gorm"
)

// File is one stored contract document. Successive versions of the same
// document form a chain linked by PreviousVersionID, terminating at a row
// with PreviousVersionID nil and Version 1.
type File struct {
	ID                uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ContractID        string         `gorm:"type:varchar(100);not null;index" json:"contract_id"`
	Supplier          string         `gorm:"type:varchar(255)" json:"supplier"`
	FolderID          *uint          `gorm:"index" json:"folder_id"`
	Name              string         `gorm:"type:varchar(255);not null" json:"name"`
	OriginalName      string         `gorm:"type:varchar(255);not null" json:"original_name"`
	MimeType          string         `gorm:"type:varchar(100)" json:"mime_type"`
	FileSize          int64          `gorm:"not null" json:"file_size"`
	Data              []byte         `gorm:"type:bytea" json:"-"`
	Version           int            `gorm:"not null;default:1" json:"version"`
	PreviousVersionID *uint          `gorm:"index" json:"previous_version_id"`
	UploadedBy        uint           `gorm:"not null;index" json:"uploaded_by"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy         *uint          `json:"deleted_by,omitempty"`
}
