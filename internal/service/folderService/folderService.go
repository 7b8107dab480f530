package folderService

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storage-service/internal/model/fileInfo"
	"storage-service/internal/model/folder"
	"storage-service/internal/model/user"
	"storage-service/internal/service/cascade"
	"storage-service/internal/shared"
)

type FolderRepository interface {
	GetRoot(ctx context.Context, ownerID uint32) (*folder.Folder, error)
	GetByID(ctx context.Context, ownerID uint32, folderID uuid.UUID) (*folder.Folder, error)
	ExistsInParent(ctx context.Context, ownerID uint32, parentID uuid.UUID, name string) (bool, error)
	Create(ctx context.Context, f *folder.Folder) error
	Rename(ctx context.Context, folderID uuid.UUID, newName string) error
	ListSubfolders(ctx context.Context, parentID uuid.UUID) ([]*folder.Folder, error)
}

type FileLister interface {
	ListByFolder(ctx context.Context, folderID uuid.UUID) ([]*fileInfo.File, error)
}

type DeletionQueue interface {
	Enqueue(ctx context.Context, task cascade.Task) error
}

// FolderView materializes one folder with its direct children.
type FolderView struct {
	Folder     *folder.Folder
	Subfolders []*folder.Folder
	Files      []*fileInfo.File
}

type FolderService struct {
	folderRepo FolderRepository
	fileRepo   FileLister
	deletions  DeletionQueue
}

func New(folderRepo FolderRepository, fileRepo FileLister, deletions DeletionQueue) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		deletions:  deletions,
	}
}

// GetRootFolder returns the owner's unique parentless folder. A missing
// root means provisioning never ran; that is an invariant violation and
// surfaces as ErrRootMissing rather than a user-facing not-found.
func (s *FolderService) GetRootFolder(ctx context.Context, owner *user.User) (*FolderView, error) {
	root, err := s.folderRepo.GetRoot(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get root folder: %w", err)
	}
	if root == nil {
		return nil, shared.ErrRootMissing
	}
	return s.materialize(ctx, root)
}

func (s *FolderService) GetFolder(ctx context.Context, owner *user.User, folderID uuid.UUID) (*FolderView, error) {
	f, err := s.mustGet(ctx, owner, folderID)
	if err != nil {
		return nil, err
	}
	return s.materialize(ctx, f)
}

// CreateInRoot creates a folder directly under the owner's root.
func (s *FolderService) CreateInRoot(ctx context.Context, owner *user.User, name string) (*folder.Folder, error) {
	root, err := s.folderRepo.GetRoot(ctx, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get root folder: %w", err)
	}
	if root == nil {
		return nil, shared.ErrRootMissing
	}
	return s.CreateFolder(ctx, owner, root.ID, name)
}

func (s *FolderService) CreateFolder(ctx context.Context, owner *user.User, parentID uuid.UUID, name string) (*folder.Folder, error) {
	if _, err := s.mustGet(ctx, owner, parentID); err != nil {
		return nil, err
	}

	taken, err := s.folderRepo.ExistsInParent(ctx, owner.ID, parentID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check sibling names: %w", err)
	}
	if taken {
		return nil, shared.ErrFolderNameTaken
	}

	f := &folder.Folder{
		ID:       uuid.New(),
		OwnerID:  owner.ID,
		ParentID: &parentID,
		Name:     name,
	}
	if err := s.folderRepo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}
	return f, nil
}

func (s *FolderService) RenameFolder(ctx context.Context, owner *user.User, folderID uuid.UUID, newName string) error {
	target, err := s.mustGet(ctx, owner, folderID)
	if err != nil {
		return err
	}
	if target.IsRoot() {
		return shared.ErrCannotModifyRoot
	}

	taken, err := s.folderRepo.ExistsInParent(ctx, owner.ID, *target.ParentID, newName)
	if err != nil {
		return fmt.Errorf("failed to check sibling names: %w", err)
	}
	if taken {
		return shared.ErrFolderNameTaken
	}

	if err := s.folderRepo.Rename(ctx, folderID, newName); err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	return nil
}

// DeleteFolder validates the target synchronously and hands the actual
// removal to the cascade worker. Success means admitted for deletion,
// not deleted.
func (s *FolderService) DeleteFolder(ctx context.Context, owner *user.User, folderID uuid.UUID) error {
	target, err := s.mustGet(ctx, owner, folderID)
	if err != nil {
		return err
	}
	if target.IsRoot() {
		return shared.ErrCannotModifyRoot
	}

	task := cascade.Task{FolderID: target.ID, OwnerID: owner.ID}
	if err := s.deletions.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("failed to admit folder for deletion: %w", err)
	}
	return nil
}

func (s *FolderService) mustGet(ctx context.Context, owner *user.User, folderID uuid.UUID) (*folder.Folder, error) {
	f, err := s.folderRepo.GetByID(ctx, owner.ID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}
	if f == nil {
		return nil, shared.ErrFolderNotFound
	}
	return f, nil
}

func (s *FolderService) materialize(ctx context.Context, f *folder.Folder) (*FolderView, error) {
	subfolders, err := s.folderRepo.ListSubfolders(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subfolders: %w", err)
	}
	files, err := s.fileRepo.ListByFolder(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return &FolderView{Folder: f, Subfolders: subfolders, Files: files}, nil
}
