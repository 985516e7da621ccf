package services

import (
	"context"
	"math"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/logger"
	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"
	"github.com/Angel-Soto43/AzalMechanicalSupport/utils"
)

// Actor is the identity every mutating operation acts under. Handlers fill
// it from the auth context plus the request's client address and user agent.
type Actor struct {
	UserID    uint
	IsAdmin   bool
	IPAddress string
	UserAgent string
}

func (a Actor) userIDPtr() *uint {
	id := a.UserID
	return &id
}

type AuditEntry struct {
	UserID       *uint
	Action       models.AuditAction
	ResourceType string
	ResourceID   *uint
	Details      string
	IPAddress    string
	UserAgent    string
}

// auditRecorder is the single-method dependency the other services take, so
// tests can substitute a recording fake and count appends.
type auditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

// unknownUserLabel is shown when an audit row references a user that no
// longer resolves.
const unknownUserLabel = "unknown user"

const systemUserLabel = "system"

type AuditLogView struct {
	models.AuditLog
	UserName string `json:"user_name"`
}

type AuditListOutput struct {
	Logs       []AuditLogView       `json:"logs"`
	Pagination utils.PaginationData `json:"pagination"`
}

type AuditService interface {
	Record(ctx context.Context, entry AuditEntry)
	ListLogs(ctx context.Context, page int, pageSize int, action string, userID *uint) (AuditListOutput, error)
}

type auditService struct {
	auditLogs repositories.AuditLogRepository
	users     repositories.UserRepository
}

func NewAuditService(auditLogs repositories.AuditLogRepository, users repositories.UserRepository) AuditService {
	return &auditService{auditLogs: auditLogs, users: users}
}

// Record appends one immutable audit row. Audit writes are best-effort:
// a failure goes to the operational log and never fails the operation the
// entry describes.
func (s *auditService) Record(ctx context.Context, entry AuditEntry) {
	row := models.AuditLog{
		UserID:       entry.UserID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
	}
	if err := s.auditLogs.Create(ctx, nil, &row); err != nil {
		logger.Warnf("audit write failed (action=%s): %v", entry.Action, err)
	}
}

func (s *auditService) ListLogs(ctx context.Context, page int, pageSize int, action string, userID *uint) (AuditListOutput, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > config.AppConfig.Audit.MaxPageSize {
		pageSize = config.AppConfig.Audit.DefaultPageSize
	}

	in := repositories.AuditListInput{
		UserID: userID,
		Action: action,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}

	total, err := s.auditLogs.Count(ctx, nil, in)
	if err != nil {
		return AuditListOutput{}, newInternalError("count audit logs failed", err)
	}
	logs, err := s.auditLogs.List(ctx, nil, in)
	if err != nil {
		return AuditListOutput{}, newInternalError("list audit logs failed", err)
	}

	views, err := s.enrich(ctx, logs)
	if err != nil {
		return AuditListOutput{}, newInternalError("resolve audit user names failed", err)
	}

	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	return AuditListOutput{
		Logs: views,
		Pagination: utils.PaginationData{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// enrich joins user ids to display names for presentation. Rows whose user
// is gone resolve to a sentinel label instead of failing the listing.
func (s *auditService) enrich(ctx context.Context, logs []models.AuditLog) ([]AuditLogView, error) {
	idSet := map[uint]struct{}{}
	for _, entry := range logs {
		if entry.UserID != nil {
			idSet[*entry.UserID] = struct{}{}
		}
	}
	ids := make([]uint, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.users.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, user := range users {
		names[user.ID] = user.DisplayName()
	}

	views := make([]AuditLogView, 0, len(logs))
	for _, entry := range logs {
		view := AuditLogView{AuditLog: entry, UserName: systemUserLabel}
		if entry.UserID != nil {
			if name, ok := names[*entry.UserID]; ok {
				view.UserName = name
			} else {
				view.UserName = unknownUserLabel
			}
		}
		views = append(views, view)
	}
	return views, nil
}
