package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/Angel-Soto43/AzalMechanicalSupport/config"
	"github.com/Angel-Soto43/AzalMechanicalSupport/models"
	"github.com/Angel-Soto43/AzalMechanicalSupport/repositories"

	"gorm.io/gorm"
)

var errTestBoom = errors.New("boom")

// asAppError fails the test unless err unwraps to an *AppError.
func asAppError(t *testing.T, err error) *AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}
	return appErr
}

func setTestConfig(t *testing.T) {
	t.Helper()
	previous := config.AppConfig
	config.AppConfig = &config.Config{
		Storage: config.StorageConfig{
			MaxFileSize:   1 << 20,
			RetentionDays: 30,
		},
		Share: config.ShareConfig{TokenExpireSeconds: 3600},
		Audit: config.AuditConfig{DefaultPageSize: 50, MaxPageSize: 200},
	}
	t.Cleanup(func() { config.AppConfig = previous })
}

// setAllowedExtensions narrows the upload allowlist for a single test. It
// assumes setTestConfig already ran.
func setAllowedExtensions(t *testing.T, exts []string) {
	t.Helper()
	config.AppConfig.Storage.AllowedExtensions = exts
}

type fakeTxManager struct {
	err   error
	calls int
}

func (m *fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if m.err != nil {
		return m.err
	}
	m.calls++
	return fn(nil)
}

type fakeAudit struct {
	entries []AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, entry AuditEntry) {
	f.entries = append(f.entries, entry)
}

func (f *fakeAudit) ListLogs(context.Context, int, int, string, *uint) (AuditListOutput, error) {
	return AuditListOutput{}, nil
}

func (f *fakeAudit) countByAction(action models.AuditAction) int {
	count := 0
	for _, entry := range f.entries {
		if entry.Action == action {
			count++
		}
	}
	return count
}

func (f *fakeAudit) lastByAction(action models.AuditAction) (AuditEntry, bool) {
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].Action == action {
			return f.entries[i], true
		}
	}
	return AuditEntry{}, false
}

type fakeFolderRepo struct {
	folders   map[uint]models.Folder
	nextID    uint
	getErr    error
	createErr error
	listErr   error
	countErr  error
	updateErr error
	deleteErr error
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: map[uint]models.Folder{}, nextID: 1}
}

func (r *fakeFolderRepo) add(folder models.Folder) models.Folder {
	if folder.ID == 0 {
		folder.ID = r.nextID
		r.nextID++
	} else if folder.ID >= r.nextID {
		r.nextID = folder.ID + 1
	}
	r.folders[folder.ID] = folder
	return folder
}

func (r *fakeFolderRepo) GetByID(_ context.Context, _ *gorm.DB, folderID uint) (models.Folder, error) {
	if r.getErr != nil {
		return models.Folder{}, r.getErr
	}
	folder, ok := r.folders[folderID]
	if !ok {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) Create(_ context.Context, _ *gorm.DB, folder *models.Folder) error {
	if r.createErr != nil {
		return r.createErr
	}
	*folder = r.add(*folder)
	return nil
}

func (r *fakeFolderRepo) ListRoots(_ context.Context, _ *gorm.DB) ([]models.Folder, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Folder
	for _, folder := range r.folders {
		if folder.ParentID == nil {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, _ *gorm.DB, parentID uint) ([]models.Folder, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Folder
	for _, folder := range r.folders {
		if folder.ParentID != nil && *folder.ParentID == parentID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeFolderRepo) CountByParentAndName(_ context.Context, _ *gorm.DB, parentID *uint, name string, excludeID uint) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var count int64
	for _, folder := range r.folders {
		if folder.ID == excludeID || folder.Name != name {
			continue
		}
		if parentID == nil && folder.ParentID == nil {
			count++
			continue
		}
		if parentID != nil && folder.ParentID != nil && *parentID == *folder.ParentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) CountAll(_ context.Context, _ *gorm.DB) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.folders)), nil
}

func (r *fakeFolderRepo) UpdateByID(_ context.Context, _ *gorm.DB, folderID uint, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	folder, ok := r.folders[folderID]
	if !ok {
		return nil
	}
	if name, ok := updates["name"].(string); ok {
		folder.Name = name
	}
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) DeleteByID(_ context.Context, _ *gorm.DB, folderID uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.folders, folderID)
	return nil
}

type fakeFileRepo struct {
	files         map[uint]models.File
	nextID        uint
	createErr     error
	getErr        error
	listErr       error
	countErr      error
	updateErr     error
	softDeleteErr error
	purgeErr      error
	purgedIDs     []uint
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[uint]models.File{}, nextID: 1}
}

func (r *fakeFileRepo) add(file models.File) models.File {
	if file.ID == 0 {
		file.ID = r.nextID
		r.nextID++
	} else if file.ID >= r.nextID {
		r.nextID = file.ID + 1
	}
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now()
	}
	r.files[file.ID] = file
	return file
}

func (r *fakeFileRepo) Create(_ context.Context, _ *gorm.DB, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	// Mirror the partial unique index on active contract ids.
	for _, existing := range r.files {
		if !existing.DeletedAt.Valid && existing.ContractID == file.ContractID && existing.ID != file.ID {
			return gorm.ErrDuplicatedKey
		}
	}
	*file = r.add(*file)
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, _ *gorm.DB, fileID uint) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	file, ok := r.files[fileID]
	if !ok || file.DeletedAt.Valid {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (r *fakeFileRepo) GetByIDUnscoped(_ context.Context, _ *gorm.DB, fileID uint) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	file, ok := r.files[fileID]
	if !ok {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func stripPayload(file models.File) models.File {
	file.Data = nil
	return file
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, _ *gorm.DB, folderID *uint) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.File
	for _, file := range r.files {
		if file.DeletedAt.Valid {
			continue
		}
		if folderID == nil && file.FolderID == nil {
			out = append(out, stripPayload(file))
			continue
		}
		if folderID != nil && file.FolderID != nil && *folderID == *file.FolderID {
			out = append(out, stripPayload(file))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalName < out[j].OriginalName })
	return out, nil
}

func (r *fakeFileRepo) ListRecent(_ context.Context, _ *gorm.DB, limit int) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.File
	for _, file := range r.files {
		if !file.DeletedAt.Valid {
			out = append(out, stripPayload(file))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFileRepo) ListByUploader(_ context.Context, _ *gorm.DB, userID uint) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.File
	for _, file := range r.files {
		if !file.DeletedAt.Valid && file.UploadedBy == userID {
			out = append(out, stripPayload(file))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeFileRepo) ListRangeMeta(_ context.Context, _ *gorm.DB, in repositories.FileRangeInput) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.File
	for _, file := range r.files {
		if file.DeletedAt.Valid {
			continue
		}
		if file.CreatedAt.Before(in.Start) || file.CreatedAt.After(in.End) {
			continue
		}
		out = append(out, stripPayload(file))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeFileRepo) ListDeletedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.File
	for _, file := range r.files {
		if file.DeletedAt.Valid && file.DeletedAt.Time.Before(cutoff) {
			out = append(out, stripPayload(file))
		}
	}
	return out, nil
}

func (r *fakeFileRepo) CountActiveByContract(_ context.Context, _ *gorm.DB, contractID string, excludeID uint) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	var count int64
	for _, file := range r.files {
		if !file.DeletedAt.Valid && file.ContractID == contractID && file.ID != excludeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFileRepo) UpdateByID(_ context.Context, _ *gorm.DB, fileID uint, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	file, ok := r.files[fileID]
	if !ok {
		return nil
	}
	if folderID, ok := updates["folder_id"]; ok {
		if folderID == nil {
			file.FolderID = nil
		} else if id, ok := folderID.(*uint); ok {
			file.FolderID = id
		}
	}
	r.files[fileID] = file
	return nil
}

func (r *fakeFileRepo) SoftDeleteByID(_ context.Context, _ *gorm.DB, fileID uint, deletedBy uint) error {
	if r.softDeleteErr != nil {
		return r.softDeleteErr
	}
	file, ok := r.files[fileID]
	if !ok {
		return nil
	}
	file.DeletedBy = &deletedBy
	file.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.files[fileID] = file
	return nil
}

func (r *fakeFileRepo) PurgeByID(_ context.Context, _ *gorm.DB, fileID uint) error {
	if r.purgeErr != nil {
		return r.purgeErr
	}
	delete(r.files, fileID)
	r.purgedIDs = append(r.purgedIDs, fileID)
	return nil
}

func (r *fakeFileRepo) PurgeByFolderID(_ context.Context, _ *gorm.DB, folderID uint) error {
	if r.purgeErr != nil {
		return r.purgeErr
	}
	for id, file := range r.files {
		if file.FolderID != nil && *file.FolderID == folderID {
			delete(r.files, id)
			r.purgedIDs = append(r.purgedIDs, id)
		}
	}
	return nil
}

type fakeUserRepo struct {
	users  map[uint]models.User
	getErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	if r.getErr != nil {
		return models.User{}, r.getErr
	}
	user, ok := r.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, _ *gorm.DB, userIDs []uint) ([]models.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	var out []models.User
	for _, id := range userIDs {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

type fakeAuditLogRepo struct {
	rows      []models.AuditLog
	nextID    uint
	createErr error
	listErr   error
}

func newFakeAuditLogRepo() *fakeAuditLogRepo {
	return &fakeAuditLogRepo{nextID: 1}
}

func (r *fakeAuditLogRepo) Create(_ context.Context, _ *gorm.DB, entry *models.AuditLog) error {
	if r.createErr != nil {
		return r.createErr
	}
	entry.ID = r.nextID
	r.nextID++
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.rows = append(r.rows, *entry)
	return nil
}

func (r *fakeAuditLogRepo) matches(entry models.AuditLog, in repositories.AuditListInput) bool {
	if in.UserID != nil {
		if entry.UserID == nil || *entry.UserID != *in.UserID {
			return false
		}
	}
	if in.Action != "" && string(entry.Action) != in.Action {
		return false
	}
	return true
}

func (r *fakeAuditLogRepo) List(_ context.Context, _ *gorm.DB, in repositories.AuditListInput) ([]models.AuditLog, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var filtered []models.AuditLog
	for _, entry := range r.rows {
		if r.matches(entry, in) {
			filtered = append(filtered, entry)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].CreatedAt.After(filtered[j].CreatedAt) })
	if in.Offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[in.Offset:]
	if in.Limit > 0 && len(filtered) > in.Limit {
		filtered = filtered[:in.Limit]
	}
	return filtered, nil
}

func (r *fakeAuditLogRepo) Count(_ context.Context, _ *gorm.DB, in repositories.AuditListInput) (int64, error) {
	if r.listErr != nil {
		return 0, r.listErr
	}
	var count int64
	for _, entry := range r.rows {
		if r.matches(entry, in) {
			count++
		}
	}
	return count, nil
}

type fakeShareTokenRepo struct {
	targets map[string]repositories.ShareTarget
	expires map[string]int
	saveErr error
}

func newFakeShareTokenRepo() *fakeShareTokenRepo {
	return &fakeShareTokenRepo{
		targets: map[string]repositories.ShareTarget{},
		expires: map[string]int{},
	}
}

func (r *fakeShareTokenRepo) Save(_ context.Context, token string, target repositories.ShareTarget, expireSeconds int) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.targets[token] = target
	r.expires[token] = expireSeconds
	return nil
}

func (r *fakeShareTokenRepo) Resolve(_ context.Context, token string) (repositories.ShareTarget, error) {
	target, ok := r.targets[token]
	if !ok {
		return repositories.ShareTarget{}, repositories.ErrShareTokenNotFound
	}
	return target, nil
}

func (r *fakeShareTokenRepo) Delete(_ context.Context, token string) error {
	delete(r.targets, token)
	delete(r.expires, token)
	return nil
}
