package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"

	"gorm.io/gorm"
)

type UploadInput struct {
	ContractID   string
	Supplier     string
	FolderID     *uint
	OriginalName string
	MimeType     string
	Data         []byte
	// PreviousVersionID links the new file into an existing version chain.
	// A dangling reference degrades to a fresh chain at version 1.
	PreviousVersionID *uint
}

type ReplaceInput struct {
	OriginalName string
	MimeType     string
	Data         []byte
}

type FileService interface {
	Upload(ctx context.Context, actor Actor, in UploadInput) (models.File, error)
	Replace(ctx context.Context, actor Actor, fileID uint, in ReplaceInput) (models.File, error)
	ListVersions(ctx context.Context, fileID uint) ([]models.File, error)
	ListFiles(ctx context.Context, folderID *uint) ([]models.File, error)
	ListRecent(ctx context.Context, limit int) ([]models.File, error)
	ListByUploader(ctx context.Context, userID uint) ([]models.File, error)
	Download(ctx context.Context, actor Actor, fileID uint) (models.File, error)
	DownloadViaShare(ctx context.Context, ipAddress string, userAgent string, fileID uint) (models.File, error)
	Preview(ctx context.Context, actor Actor, fileID uint) (models.File, error)
	Move(ctx context.Context, actor Actor, fileID uint, folderID *uint) error
	Delete(ctx context.Context, actor Actor, fileID uint) error
}

type fileService struct {
	txManager TxManager
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	audit     auditRecorder
}

func NewFileService(
	txManager TxManager,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	audit AuditService,
) FileService {
	return &fileService{
		txManager: txManager,
		folders:   folders,
		files:     files,
		audit:     audit,
	}
}

func (s *fileService) validatePayload(originalName string, data []byte) error {
	if originalName == "" {
		return newValidationError("file name is required")
	}
	if len(data) == 0 {
		return newValidationError("file payload is empty")
	}
	if int64(len(data)) > config.AppConfig.Storage.MaxFileSize {
		return newValidationError("file size exceeds the allowed limit")
	}
	if !isFileExtensionAllowed(originalName) {
		return newValidationError("file type is not allowed")
	}
	return nil
}

// checkContractAvailable rejects a contract id that is already carried by an
// active file. This is a pre-check only; the partial unique index on the
// files table closes the race between concurrent uploads, and a duplicate
// key error from the insert maps to the same conflict.
func (s *fileService) checkContractAvailable(ctx context.Context, tx *gorm.DB, contractID string) error {
	count, err := s.files.CountActiveByContract(ctx, tx, contractID, 0)
	if err != nil {
		return newInternalError("check contract id failed", err)
	}
	if count > 0 {
		return newConflictError("an active file with this contract id already exists")
	}
	return nil
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// resolveVersion computes the version number for a new file. An unset
// reference starts a chain at version 1; a dangling reference is tolerated
// and also starts a fresh chain rather than failing the upload.
func (s *fileService) resolveVersion(ctx context.Context, tx *gorm.DB, previousVersionID *uint) (int, *uint, error) {
	if previousVersionID == nil {
		return 1, nil, nil
	}
	previous, err := s.files.GetByIDUnscoped(ctx, tx, *previousVersionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil, nil
		}
		return 0, nil, newInternalError("look up previous version failed", err)
	}
	return previous.Version + 1, &previous.ID, nil
}

func (s *fileService) Upload(ctx context.Context, actor Actor, in UploadInput) (models.File, error) {
	if in.ContractID == "" {
		return models.File{}, newValidationError("contract id is required")
	}
	if err := s.validatePayload(in.OriginalName, in.Data); err != nil {
		return models.File{}, err
	}

	if in.FolderID != nil {
		if _, err := s.folders.GetByID(ctx, nil, *in.FolderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.File{}, newNotFoundError("target folder not found")
			}
			return models.File{}, newInternalError("look up target folder failed", err)
		}
	}

	if err := s.checkContractAvailable(ctx, nil, in.ContractID); err != nil {
		return models.File{}, err
	}

	version, previousID, err := s.resolveVersion(ctx, nil, in.PreviousVersionID)
	if err != nil {
		return models.File{}, err
	}

	file := models.File{
		ContractID:        in.ContractID,
		Supplier:          in.Supplier,
		FolderID:          in.FolderID,
		Name:              sanitizeFilename(in.OriginalName),
		OriginalName:      in.OriginalName,
		MimeType:          in.MimeType,
		FileSize:          int64(len(in.Data)),
		Data:              in.Data,
		Version:           version,
		PreviousVersionID: previousID,
		UploadedBy:        actor.UserID,
	}
	if err := s.files.Create(ctx, nil, &file); err != nil {
		if isDuplicateKey(err) {
			return models.File{}, newConflictError("an active file with this contract id already exists")
		}
		return models.File{}, newInternalError("store file failed", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionUpload,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("uploaded %q (contract %s, version %d)", file.OriginalName, file.ContractID, file.Version),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return file, nil
}

// Replace stores a new version of an active file and retires the
// predecessor. The policy is history-preserving: the new row links back to
// the predecessor, which is soft-deleted rather than purged, so the chain
// stays walkable. Both writes happen inside one transaction; the
// predecessor is retired first so the active-contract unique index accepts
// the successor.
func (s *fileService) Replace(ctx context.Context, actor Actor, fileID uint, in ReplaceInput) (models.File, error) {
	existing, err := s.files.GetByID(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newNotFoundError("file not found")
		}
		return models.File{}, newInternalError("look up file failed", err)
	}

	if err := s.validatePayload(in.OriginalName, in.Data); err != nil {
		return models.File{}, err
	}

	successor := models.File{
		ContractID:        existing.ContractID,
		Supplier:          existing.Supplier,
		FolderID:          existing.FolderID,
		Name:              sanitizeFilename(in.OriginalName),
		OriginalName:      in.OriginalName,
		MimeType:          in.MimeType,
		FileSize:          int64(len(in.Data)),
		Data:              in.Data,
		Version:           existing.Version + 1,
		PreviousVersionID: &existing.ID,
		UploadedBy:        actor.UserID,
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.files.SoftDeleteByID(ctx, tx, existing.ID, actor.UserID); err != nil {
			return err
		}
		return s.files.Create(ctx, tx, &successor)
	})
	if err != nil {
		if isDuplicateKey(err) {
			return models.File{}, newConflictError("an active file with this contract id already exists")
		}
		return models.File{}, newInternalError("replace file failed", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionReplacement,
		ResourceType: "file",
		ResourceID:   &successor.ID,
		Details:      fmt.Sprintf("replaced %q with version %d", existing.OriginalName, successor.Version),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return successor, nil
}

// ListVersions walks the version chain backward from the given file,
// soft-deleted predecessors included, and returns it ascending by version.
func (s *fileService) ListVersions(ctx context.Context, fileID uint) ([]models.File, error) {
	current, err := s.files.GetByIDUnscoped(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("file not found")
		}
		return nil, newInternalError("look up file failed", err)
	}

	seen := map[uint]struct{}{current.ID: {}}
	chain := []models.File{current}
	for current.PreviousVersionID != nil {
		previousID := *current.PreviousVersionID
		if _, ok := seen[previousID]; ok {
			return nil, newInternalError("version chain contains a cycle", nil)
		}
		previous, err := s.files.GetByIDUnscoped(ctx, nil, previousID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling tail; return what could be resolved.
				break
			}
			return nil, newInternalError("look up previous version failed", err)
		}
		seen[previous.ID] = struct{}{}
		chain = append(chain, previous)
		current = previous
	}

	sort.Slice(chain, func(i, j int) bool { return chain[i].Version < chain[j].Version })
	return chain, nil
}

func (s *fileService) ListFiles(ctx context.Context, folderID *uint) ([]models.File, error) {
	if folderID != nil {
		if _, err := s.folders.GetByID(ctx, nil, *folderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newNotFoundError("folder not found")
			}
			return nil, newInternalError("look up folder failed", err)
		}
	}
	files, err := s.files.ListByFolder(ctx, nil, folderID)
	if err != nil {
		return nil, newInternalError("list files failed", err)
	}
	return files, nil
}

func (s *fileService) ListRecent(ctx context.Context, limit int) ([]models.File, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	files, err := s.files.ListRecent(ctx, nil, limit)
	if err != nil {
		return nil, newInternalError("list recent files failed", err)
	}
	return files, nil
}

func (s *fileService) ListByUploader(ctx context.Context, userID uint) ([]models.File, error) {
	files, err := s.files.ListByUploader(ctx, nil, userID)
	if err != nil {
		return nil, newInternalError("list files failed", err)
	}
	return files, nil
}

func (s *fileService) fetchActive(ctx context.Context, fileID uint) (models.File, error) {
	file, err := s.files.GetByID(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newNotFoundError("file not found")
		}
		return models.File{}, newInternalError("look up file failed", err)
	}
	return file, nil
}

func (s *fileService) Download(ctx context.Context, actor Actor, fileID uint) (models.File, error) {
	file, err := s.fetchActive(ctx, fileID)
	if err != nil {
		return models.File{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionDownload,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("downloaded %q", file.OriginalName),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return file, nil
}

// DownloadViaShare serves a file reached through a share token. The audit
// entry carries no user id: the caller is anonymous.
func (s *fileService) DownloadViaShare(ctx context.Context, ipAddress string, userAgent string, fileID uint) (models.File, error) {
	file, err := s.fetchActive(ctx, fileID)
	if err != nil {
		return models.File{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		Action:       models.ActionDownload,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("downloaded %q via share link", file.OriginalName),
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
	})

	return file, nil
}

func (s *fileService) Preview(ctx context.Context, actor Actor, fileID uint) (models.File, error) {
	file, err := s.fetchActive(ctx, fileID)
	if err != nil {
		return models.File{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionPreview,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("previewed %q", file.OriginalName),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return file, nil
}

func (s *fileService) Move(ctx context.Context, actor Actor, fileID uint, folderID *uint) error {
	file, err := s.fetchActive(ctx, fileID)
	if err != nil {
		return err
	}

	if folderID != nil {
		if _, err := s.folders.GetByID(ctx, nil, *folderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFoundError("target folder not found")
			}
			return newInternalError("look up target folder failed", err)
		}
	}

	if err := s.files.UpdateByID(ctx, nil, file.ID, map[string]interface{}{"folder_id": folderID}); err != nil {
		return newInternalError("move file failed", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionMove,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("moved %q", file.OriginalName),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return nil
}

// Delete soft-deletes a file: the row stays retrievable through unscoped
// lookups but disappears from every active listing. Deleting an already
// soft-deleted file is an idempotent no-op.
func (s *fileService) Delete(ctx context.Context, actor Actor, fileID uint) error {
	file, err := s.files.GetByIDUnscoped(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newNotFoundError("file not found")
		}
		return newInternalError("look up file failed", err)
	}
	if file.DeletedAt.Valid {
		return nil
	}

	if err := s.files.SoftDeleteByID(ctx, nil, file.ID, actor.UserID); err != nil {
		return newInternalError("delete file failed", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionDelete,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("deleted %q", file.OriginalName),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return nil
}
