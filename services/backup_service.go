package services

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"

	"gorm.io/gorm"
)

const (
	BackupRangeWeek     = "week"
	BackupRangeMonth    = "month"
	BackupRangeYear     = "year"
	BackupRangeLastYear = "last_year"
	BackupRangeCustom   = "custom"
)

type BackupInput struct {
	Range string
	// Start and End are date-only bounds, used when Range is custom.
	Start time.Time
	End   time.Time
}

type BackupResult struct {
	Count int       `json:"count"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type BackupService interface {
	// BuildArchive streams a zip of the latest active files uploaded within
	// the range into w and returns how many entries it wrote.
	BuildArchive(ctx context.Context, actor Actor, w io.Writer, in BackupInput) (BackupResult, error)
}

type backupService struct {
	files   repositories.FileRepository
	folders FolderService
	audit   auditRecorder
}

func NewBackupService(
	files repositories.FileRepository,
	folders FolderService,
	audit AuditService,
) BackupService {
	return &backupService{
		files:   files,
		folders: folders,
		audit:   audit,
	}
}

// resolveBackupRange turns a named range into inclusive time bounds.
// Weeks start on Monday.
func resolveBackupRange(now time.Time, in BackupInput) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch in.Range {
	case BackupRangeWeek:
		offset := (int(now.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), now, nil
	case BackupRangeMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now, nil
	case BackupRangeYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), now, nil
	case BackupRangeLastYear:
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)
		return start, end, nil
	case BackupRangeCustom:
		if in.Start.IsZero() || in.End.IsZero() {
			return time.Time{}, time.Time{}, newValidationError("custom range requires start and end dates")
		}
		if in.End.Before(in.Start) {
			return time.Time{}, time.Time{}, newValidationError("range end precedes range start")
		}
		end := time.Date(in.End.Year(), in.End.Month(), in.End.Day(), 0, 0, 0, 0, in.End.Location()).
			AddDate(0, 0, 1).Add(-time.Nanosecond)
		return in.Start, end, nil
	default:
		return time.Time{}, time.Time{}, newValidationError("unknown backup range")
	}
}

func (s *backupService) BuildArchive(ctx context.Context, actor Actor, w io.Writer, in BackupInput) (BackupResult, error) {
	start, end, err := resolveBackupRange(time.Now(), in)
	if err != nil {
		return BackupResult{}, err
	}

	// Metadata only; payloads are fetched one file at a time while writing
	// the archive, so memory stays bounded by a single document.
	candidates, err := s.files.ListRangeMeta(ctx, nil, repositories.FileRangeInput{Start: start, End: end})
	if err != nil {
		return BackupResult{}, newInternalError("select backup files failed", err)
	}

	// A file is superseded when another file in the selection links back to
	// it; only the latest version of each chain goes into the archive.
	superseded := make(map[uint]struct{})
	for _, file := range candidates {
		if file.PreviousVersionID != nil {
			superseded[*file.PreviousVersionID] = struct{}{}
		}
	}

	zw := zip.NewWriter(w)
	count := 0
	for _, file := range candidates {
		if _, ok := superseded[file.ID]; ok {
			continue
		}

		entryName, err := s.entryName(ctx, file)
		if err != nil {
			zw.Close()
			return BackupResult{}, err
		}

		full, err := s.files.GetByID(ctx, nil, file.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Deleted while the export was running; skip it.
				continue
			}
			zw.Close()
			return BackupResult{}, newInternalError("read backup payload failed", err)
		}

		entry, err := zw.Create(entryName)
		if err != nil {
			zw.Close()
			return BackupResult{}, newInternalError("write archive entry failed", err)
		}
		if _, err := entry.Write(full.Data); err != nil {
			zw.Close()
			return BackupResult{}, newInternalError("write archive entry failed", err)
		}
		count++
	}
	if err := zw.Close(); err != nil {
		return BackupResult{}, newInternalError("finalize archive failed", err)
	}

	// Recorded only after the stream completed successfully.
	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionBackup,
		ResourceType: "backup",
		Details: fmt.Sprintf("exported %d files for range %s (%s to %s)",
			count, in.Range, start.Format("2006-01-02"), end.Format("2006-01-02")),
		IPAddress: actor.IPAddress,
		UserAgent: actor.UserAgent,
	})

	return BackupResult{Count: count, Start: start, End: end}, nil
}

// entryName reconstructs the folder path of a file and appends its original
// name. Files without a folder sit at the archive root.
func (s *backupService) entryName(ctx context.Context, file models.File) (string, error) {
	if file.FolderID == nil {
		return file.OriginalName, nil
	}

	pathFolders, err := s.folders.GetPath(ctx, *file.FolderID)
	if err != nil {
		var appErr *AppError
		if errors.As(err, &appErr) && appErr.HTTPCode == 404 {
			// Folder vanished mid-export; fall back to the bare name.
			return file.OriginalName, nil
		}
		return "", err
	}

	parts := make([]string, 0, len(pathFolders)+1)
	for _, folder := range pathFolders {
		parts = append(parts, folder.Name)
	}
	parts = append(parts, file.OriginalName)
	return strings.Join(parts, "/"), nil
}
