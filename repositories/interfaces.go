package repositories

import (
	"context"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uint) ([]models.User, error)
}

type FolderRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, folderID uint) (models.Folder, error)
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	ListRoots(ctx context.Context, tx *gorm.DB) ([]models.Folder, error)
	ListChildren(ctx context.Context, tx *gorm.DB, parentID uint) ([]models.Folder, error)
	CountByParentAndName(ctx context.Context, tx *gorm.DB, parentID *uint, name string, excludeID uint) (int64, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, folderID uint, updates map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, folderID uint) error
}

// FileRangeInput selects active files by upload time for backup export.
type FileRangeInput struct {
	Start time.Time
	End   time.Time
}

type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByID(ctx context.Context, tx *gorm.DB, fileID uint) (models.File, error)
	GetByIDUnscoped(ctx context.Context, tx *gorm.DB, fileID uint) (models.File, error)
	ListByFolder(ctx context.Context, tx *gorm.DB, folderID *uint) ([]models.File, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]models.File, error)
	ListByUploader(ctx context.Context, tx *gorm.DB, userID uint) ([]models.File, error)
	// ListRangeMeta returns active files uploaded within [in.Start, in.End]
	// without their payload column.
	ListRangeMeta(ctx context.Context, tx *gorm.DB, in FileRangeInput) ([]models.File, error)
	ListDeletedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.File, error)
	CountActiveByContract(ctx context.Context, tx *gorm.DB, contractID string, excludeID uint) (int64, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, fileID uint, updates map[string]interface{}) error
	SoftDeleteByID(ctx context.Context, tx *gorm.DB, fileID uint, deletedBy uint) error
	PurgeByID(ctx context.Context, tx *gorm.DB, fileID uint) error
	PurgeByFolderID(ctx context.Context, tx *gorm.DB, folderID uint) error
}

// AuditListInput narrows and pages audit listings.
type AuditListInput struct {
	UserID *uint
	Action string
	Offset int
	Limit  int
}

type AuditLogRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error
	List(ctx context.Context, tx *gorm.DB, in AuditListInput) ([]models.AuditLog, error)
	Count(ctx context.Context, tx *gorm.DB, in AuditListInput) (int64, error)
}

// ShareTarget identifies what a share token points at.
type ShareTarget struct {
	Kind string // "file" or "folder"
	ID   uint
}

type ShareTokenRepository interface {
	Save(ctx context.Context, token string, target ShareTarget, expireSeconds int) error
	Resolve(ctx context.Context, token string) (ShareTarget, error)
	Delete(ctx context.Context, token string) error
}

type Container struct {
	TxManager   TxManager
	Users       UserRepository
	Folders     FolderRepository
	Files       FileRepository
	AuditLogs   AuditLogRepository
	ShareTokens ShareTokenRepository
}
