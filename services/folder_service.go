package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"

	"gorm.io/gorm"
)

type FolderService interface {
	CreateFolder(ctx context.Context, actor Actor, name string, parentID *uint) (models.Folder, error)
	ListFolders(ctx context.Context, parentID *uint) ([]models.Folder, error)
	GetPath(ctx context.Context, folderID uint) ([]models.Folder, error)
	RenameFolder(ctx context.Context, actor Actor, folderID uint, name string) (models.Folder, error)
	DeleteFolder(ctx context.Context, actor Actor, folderID uint) error
}

type folderService struct {
	txManager TxManager
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	audit     auditRecorder
}

func NewFolderService(
	txManager TxManager,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	audit AuditService,
) FolderService {
	return &folderService{
		txManager: txManager,
		folders:   folders,
		files:     files,
		audit:     audit,
	}
}

func (s *folderService) CreateFolder(ctx context.Context, actor Actor, name string, parentID *uint) (models.Folder, error) {
	cleanName, err := validateFolderName(name)
	if err != nil {
		return models.Folder{}, err
	}

	if parentID != nil {
		// Walking the parent chain both confirms the parent exists and
		// refuses to attach below a malformed (cyclic) subtree.
		if _, err := s.walkToRoot(ctx, *parentID); err != nil {
			return models.Folder{}, err
		}
	}

	count, err := s.folders.CountByParentAndName(ctx, nil, parentID, cleanName, 0)
	if err != nil {
		return models.Folder{}, newInternalError("check duplicate folder name failed", err)
	}
	if count > 0 {
		return models.Folder{}, newValidationError("a folder with this name already exists here")
	}

	folder := models.Folder{
		Name:     cleanName,
		ParentID: parentID,
		OwnerID:  actor.UserID,
	}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		return models.Folder{}, newInternalError("create folder failed", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionFolderCreated,
		ResourceType: "folder",
		ResourceID:   &folder.ID,
		Details:      fmt.Sprintf("created folder %q", folder.Name),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return folder, nil
}

func (s *folderService) ListFolders(ctx context.Context, parentID *uint) ([]models.Folder, error) {
	var (
		list []models.Folder
		err  error
	)
	if parentID == nil {
		list, err = s.folders.ListRoots(ctx, nil)
	} else {
		if _, getErr := s.folders.GetByID(ctx, nil, *parentID); getErr != nil {
			if errors.Is(getErr, gorm.ErrRecordNotFound) {
				return nil, newNotFoundError("parent folder not found")
			}
			return nil, newInternalError("look up parent folder failed", getErr)
		}
		list, err = s.folders.ListChildren(ctx, nil, *parentID)
	}
	if err != nil {
		return nil, newInternalError("list folders failed", err)
	}
	return list, nil
}

// GetPath returns the folder chain from the root down to the given folder.
func (s *folderService) GetPath(ctx context.Context, folderID uint) ([]models.Folder, error) {
	return s.walkToRoot(ctx, folderID)
}

// walkToRoot collects the parent chain of folderID ordered root first. The
// walk is bounded by the total folder count so malformed data (a parent
// cycle) surfaces as an error instead of spinning forever.
func (s *folderService) walkToRoot(ctx context.Context, folderID uint) ([]models.Folder, error) {
	bound, err := s.folders.CountAll(ctx, nil)
	if err != nil {
		return nil, newInternalError("count folders failed", err)
	}

	var path []models.Folder
	currentID := folderID
	for steps := int64(0); ; steps++ {
		if steps > bound {
			return nil, newInternalError("folder hierarchy contains a cycle", nil)
		}
		folder, err := s.folders.GetByID(ctx, nil, currentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if steps == 0 {
					return nil, newNotFoundError("folder not found")
				}
				return nil, newInternalError("folder hierarchy references a missing parent", nil)
			}
			return nil, newInternalError("look up folder failed", err)
		}
		path = append([]models.Folder{folder}, path...)
		if folder.ParentID == nil {
			return path, nil
		}
		currentID = *folder.ParentID
	}
}

func (s *folderService) RenameFolder(ctx context.Context, actor Actor, folderID uint, name string) (models.Folder, error) {
	cleanName, err := validateFolderName(name)
	if err != nil {
		return models.Folder{}, err
	}

	folder, err := s.folders.GetByID(ctx, nil, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newNotFoundError("folder not found")
		}
		return models.Folder{}, newInternalError("look up folder failed", err)
	}

	count, err := s.folders.CountByParentAndName(ctx, nil, folder.ParentID, cleanName, folder.ID)
	if err != nil {
		return models.Folder{}, newInternalError("check duplicate folder name failed", err)
	}
	if count > 0 {
		return models.Folder{}, newValidationError("a folder with this name already exists here")
	}

	if err := s.folders.UpdateByID(ctx, nil, folder.ID, map[string]interface{}{"name": cleanName}); err != nil {
		return models.Folder{}, newInternalError("rename folder failed", err)
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionFolderRenamed,
		ResourceType: "folder",
		ResourceID:   &folder.ID,
		Details:      fmt.Sprintf("renamed folder %q to %q", folder.Name, cleanName),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	folder.Name = cleanName
	return folder, nil
}

// DeleteFolder permanently removes a folder, every descendant folder, and
// every file they contain, soft-deleted files included. The traversal uses
// an explicit worklist instead of native recursion and runs inside a single
// transaction, so a mid-traversal failure rolls the whole subtree back.
func (s *folderService) DeleteFolder(ctx context.Context, actor Actor, folderID uint) error {
	folder, err := s.folders.GetByID(ctx, nil, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newNotFoundError("folder not found")
		}
		return newInternalError("look up folder failed", err)
	}

	var deletedFolders int
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		bound, err := s.folders.CountAll(ctx, tx)
		if err != nil {
			return err
		}

		// Breadth-first expansion; parents precede their children in order.
		worklist := []uint{folder.ID}
		var order []uint
		for len(worklist) > 0 {
			if int64(len(order)) > bound {
				return errors.New("folder hierarchy contains a cycle")
			}
			id := worklist[0]
			worklist = worklist[1:]
			order = append(order, id)

			children, err := s.folders.ListChildren(ctx, tx, id)
			if err != nil {
				return err
			}
			for _, child := range children {
				worklist = append(worklist, child.ID)
			}
		}

		// Deepest folders go first: purge a folder's files, then its row,
		// before touching its parent. Rows already gone delete as no-ops,
		// which keeps concurrent deletions of nested folders idempotent.
		for i := len(order) - 1; i >= 0; i-- {
			if err := s.files.PurgeByFolderID(ctx, tx, order[i]); err != nil {
				return err
			}
			if err := s.folders.DeleteByID(ctx, tx, order[i]); err != nil {
				return err
			}
		}
		deletedFolders = len(order)
		return nil
	})
	if err != nil {
		return newInternalError("delete folder failed", err)
	}

	// One audit entry for the top-level call only, never per descendant.
	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionFolderDeleted,
		ResourceType: "folder",
		ResourceID:   &folder.ID,
		Details:      fmt.Sprintf("deleted folder %q and %d descendant folders", folder.Name, deletedFolders-1),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return nil
}
