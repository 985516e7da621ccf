package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShareOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ShareService interface {
	ShareFile(ctx context.Context, actor Actor, fileID uint) (ShareOutput, error)
	ShareFolder(ctx context.Context, actor Actor, folderID uint) (ShareOutput, error)
	Resolve(ctx context.Context, token string) (repositories.ShareTarget, error)
}

type shareService struct {
	folders repositories.FolderRepository
	files   repositories.FileRepository
	tokens  repositories.ShareTokenRepository
	audit   auditRecorder
}

func NewShareService(
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	tokens repositories.ShareTokenRepository,
	audit AuditService,
) ShareService {
	return &shareService{
		folders: folders,
		files:   files,
		tokens:  tokens,
		audit:   audit,
	}
}

func (s *shareService) issue(ctx context.Context, target repositories.ShareTarget) (ShareOutput, error) {
	token := uuid.NewString()
	expireSeconds := config.AppConfig.Share.TokenExpireSeconds
	if err := s.tokens.Save(ctx, token, target, expireSeconds); err != nil {
		return ShareOutput{}, newInternalError("store share token failed", err)
	}
	return ShareOutput{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(expireSeconds) * time.Second),
	}, nil
}

func (s *shareService) ShareFile(ctx context.Context, actor Actor, fileID uint) (ShareOutput, error) {
	file, err := s.files.GetByID(ctx, nil, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShareOutput{}, newNotFoundError("file not found")
		}
		return ShareOutput{}, newInternalError("look up file failed", err)
	}

	out, err := s.issue(ctx, repositories.ShareTarget{Kind: "file", ID: file.ID})
	if err != nil {
		return ShareOutput{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionFileShared,
		ResourceType: "file",
		ResourceID:   &file.ID,
		Details:      fmt.Sprintf("shared file %q", file.OriginalName),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return out, nil
}

func (s *shareService) ShareFolder(ctx context.Context, actor Actor, folderID uint) (ShareOutput, error) {
	folder, err := s.folders.GetByID(ctx, nil, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ShareOutput{}, newNotFoundError("folder not found")
		}
		return ShareOutput{}, newInternalError("look up folder failed", err)
	}

	out, err := s.issue(ctx, repositories.ShareTarget{Kind: "folder", ID: folder.ID})
	if err != nil {
		return ShareOutput{}, err
	}

	s.audit.Record(ctx, AuditEntry{
		UserID:       actor.userIDPtr(),
		Action:       models.ActionFolderShared,
		ResourceType: "folder",
		ResourceID:   &folder.ID,
		Details:      fmt.Sprintf("shared folder %q", folder.Name),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	})

	return out, nil
}

func (s *shareService) Resolve(ctx context.Context, token string) (repositories.ShareTarget, error) {
	target, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrShareTokenNotFound) {
			return repositories.ShareTarget{}, newNotFoundError("share link is unknown or expired")
		}
		return repositories.ShareTarget{}, newInternalError("resolve share token failed", err)
	}
	return target, nil
}
