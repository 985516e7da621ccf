package models

import "time"

// AuditAction is the closed set of recordable events.
type AuditAction string

const (
	ActionLogin         AuditAction = "login"
	ActionLoginFailed   AuditAction = "login_failed"
	ActionLogout        AuditAction = "logout"
	ActionUpload        AuditAction = "upload"
	ActionReplacement   AuditAction = "replacement"
	ActionDownload      AuditAction = "download"
	ActionPreview       AuditAction = "preview"
	ActionDelete        AuditAction = "delete"
	ActionMove          AuditAction = "move"
	ActionFolderCreated AuditAction = "folder_created"
	ActionFolderRenamed AuditAction = "folder_renamed"
	ActionFolderDeleted AuditAction = "folder_deleted"
	ActionFileShared    AuditAction = "file_shared"
	ActionFolderShared  AuditAction = "folder_shared"
	ActionBackup        AuditAction = "backup_executed"
	ActionUserCreated   AuditAction = "user_created"
	ActionUserUpdated   AuditAction = "user_updated"
)

// AuditLog rows are append-only: no update or delete is ever issued against
// this table. UserID nil marks a system-initiated or anonymous event.
type AuditLog struct {
	ID           uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       *uint       `gorm:"index" json:"user_id"`
	Action       AuditAction `gorm:"type:varchar(32);not null;index" json:"action"`
	ResourceType string      `gorm:"type:varchar(32)" json:"resource_type"`
	ResourceID   *uint       `json:"resource_id"`
	Details      string      `gorm:"type:text" json:"details"`
	IPAddress    string      `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent    string      `gorm:"type:varchar(500)" json:"user_agent"`
	CreatedAt    time.Time   `gorm:"index;autoCreateTime" json:"created_at"`
}
