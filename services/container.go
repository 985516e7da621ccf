package services

import "github.com/Angel-Soto43/AzalMechanicalSupport/repositories"

type Container struct {
	Audit   AuditService
	Folder  FolderService
	File    FileService
	Backup  BackupService
	Share   ShareService
	Cleanup CleanupService
}

func NewContainer(repos repositories.Container) *Container {
	audit := NewAuditService(repos.AuditLogs, repos.Users)
	folder := NewFolderService(repos.TxManager, repos.Folders, repos.Files, audit)
	container := &Container{
		Audit:   audit,
		Folder:  folder,
		File:    NewFileService(repos.TxManager, repos.Folders, repos.Files, audit),
		Backup:  NewBackupService(repos.Files, folder, audit),
		Share:   NewShareService(repos.Folders, repos.Files, repos.ShareTokens, audit),
		Cleanup: NewCleanupService(repos.Files),
	}
	SetCleanupService(container.Cleanup)
	return container
}
