package fileService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storage-service/internal/model/fileInfo"
	"storage-service/internal/model/folder"
	"storage-service/internal/model/user"
	"storage-service/internal/shared"
	"storage-service/pkg/logger"
)

type FileRepository interface {
	GetByID(ctx context.Context, fileID uuid.UUID) (*fileInfo.File, error)
	GetOwned(ctx context.Context, ownerID uint32, fileID uuid.UUID) (*fileInfo.File, error)
	ExistsInFolder(ctx context.Context, folderID uuid.UUID, name string) (bool, error)
	CreateWithQuota(ctx context.Context, ownerID uint32, f *fileInfo.File) error
	DeleteWithQuota(ctx context.Context, ownerID uint32, f *fileInfo.File) error
	Rename(ctx context.Context, fileID uuid.UUID, newName string) error
}

type FolderGetter interface {
	GetByID(ctx context.Context, ownerID uint32, folderID uuid.UUID) (*folder.Folder, error)
}

type GrantReader interface {
	Get(ctx context.Context, fileID uuid.UUID, destUserID uint32) (*fileInfo.SharedFile, error)
	ListRecipients(ctx context.Context, fileID uuid.UUID) ([]uint32, error)
}

type BlobStore interface {
	UploadFile(ctx context.Context, key string, reader io.Reader, size int64) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, key string) error
}

// Upload carries the client-supplied metadata of a new file. Key and IV
// are already encrypted client-side and stored opaquely.
type Upload struct {
	Name         string
	Type         string
	Format       string
	EncryptedKey string
	EncryptedIV  string
}

// OwnedView is the full metadata view, resolved through ownership.
type OwnedView struct {
	File       *fileInfo.File
	SharedWith []uint32
}

// SharedView is the reduced metadata view a grantee gets: the owner id
// and the grant's re-encrypted key material, no folder context.
type SharedView struct {
	FileID       uuid.UUID
	OwnerID      uint32
	Name         string
	Type         string
	Format       string
	Size         int64
	EncryptedKey string
	EncryptedIV  string
}

// Metadata is the two-variant result of metadata resolution; exactly
// one of Owned and Shared is set.
type Metadata struct {
	Owned  *OwnedView
	Shared *SharedView
}

type FileService struct {
	fileRepo   FileRepository
	folderRepo FolderGetter
	grants     GrantReader
	blobs      BlobStore
	log        *logger.Logger
}

func New(fileRepo FileRepository, folderRepo FolderGetter, grants GrantReader, blobs BlobStore, log *logger.Logger) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		grants:     grants,
		blobs:      blobs,
		log:        log,
	}
}

// UploadFile stores the blob and, in one transaction, the metadata row
// plus the quota charge. If the metadata transaction fails after the
// blob write, a compensating blob delete is attempted; an orphaned blob
// is logged, never fatal.
func (s *FileService) UploadFile(ctx context.Context, owner *user.User, folderID uuid.UUID, meta Upload, content io.Reader, size int64) (uuid.UUID, error) {
	target, err := s.folderRepo.GetByID(ctx, owner.ID, folderID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get folder: %w", err)
	}
	if target == nil {
		return uuid.Nil, shared.ErrFolderNotFound
	}

	taken, err := s.fileRepo.ExistsInFolder(ctx, folderID, meta.Name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check file names: %w", err)
	}
	if taken {
		return uuid.Nil, shared.ErrFileNameTaken
	}

	// an unknown size forces buffering; callers that know the size
	// stream straight through
	if size < 0 {
		var buf bytes.Buffer
		n, err := io.Copy(&buf, content)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to read upload stream: %w", err)
		}
		content = &buf
		size = n
	}

	if owner.SpaceTaken+size > owner.SubscriptionSpace {
		return uuid.Nil, shared.ErrSpaceLimitExceeded
	}

	fileID := uuid.New()
	storageKey := generateStorageKey(owner.Username, fileID)
	if err := s.blobs.UploadFile(ctx, storageKey, content, size); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", shared.ErrFileUpload, err)
	}

	f := &fileInfo.File{
		ID:           fileID,
		FolderID:     folderID,
		Name:         meta.Name,
		Type:         meta.Type,
		Format:       meta.Format,
		StorageKey:   storageKey,
		Size:         size,
		EncryptedKey: meta.EncryptedKey,
		EncryptedIV:  meta.EncryptedIV,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.fileRepo.CreateWithQuota(ctx, owner.ID, f); err != nil {
		if delErr := s.blobs.DeleteFile(ctx, storageKey); delErr != nil {
			s.log.Warn("orphaned blob after failed metadata insert",
				zap.String("storage_key", storageKey),
				zap.Error(delErr))
		}
		return uuid.Nil, fmt.Errorf("failed to create file entry: %w", err)
	}

	return fileID, nil
}

// GetContent streams a file the caller owns or was granted access to.
// Ownership is the cheap first tier; the share lookup only runs when it
// misses.
func (s *FileService) GetContent(ctx context.Context, caller *user.User, fileID uuid.UUID) (io.ReadCloser, error) {
	f, err := s.resolve(ctx, caller, fileID)
	if err != nil {
		return nil, err
	}
	reader, err := s.blobs.DownloadFile(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFileRetrieve, err)
	}
	return reader, nil
}

// GetMetadata resolves the caller's view of a file: the full owner view
// with folder membership and grant recipients, or the grantee's reduced
// view carrying the grant's key material.
func (s *FileService) GetMetadata(ctx context.Context, caller *user.User, fileID uuid.UUID) (*Metadata, error) {
	owned, err := s.fileRepo.GetOwned(ctx, caller.ID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if owned != nil {
		recipients, err := s.grants.ListRecipients(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("failed to list recipients: %w", err)
		}
		return &Metadata{Owned: &OwnedView{File: owned, SharedWith: recipients}}, nil
	}

	grant, err := s.grants.Get(ctx, fileID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check share grant: %w", err)
	}
	if grant == nil {
		return nil, shared.ErrFileNotFound
	}
	f, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shared file: %w", err)
	}
	if f == nil {
		return nil, shared.ErrFileNotFound
	}
	return &Metadata{Shared: &SharedView{
		FileID:       f.ID,
		OwnerID:      grant.InitiatorUserID,
		Name:         f.Name,
		Type:         f.Type,
		Format:       f.Format,
		Size:         f.Size,
		EncryptedKey: grant.EncKey,
		EncryptedIV:  grant.EncIV,
	}}, nil
}

func (s *FileService) RenameFile(ctx context.Context, owner *user.User, fileID uuid.UUID, newName string) error {
	f, err := s.mustGetOwned(ctx, owner, fileID)
	if err != nil {
		return err
	}

	taken, err := s.fileRepo.ExistsInFolder(ctx, f.FolderID, newName)
	if err != nil {
		return fmt.Errorf("failed to check file names: %w", err)
	}
	if taken {
		return shared.ErrFileNameTaken
	}

	if err := s.fileRepo.Rename(ctx, fileID, newName); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// DeleteFile removes the blob first and only then the metadata, so a
// committed row can never point at a blob that was supposed to survive.
// A blob-store failure aborts the whole operation.
func (s *FileService) DeleteFile(ctx context.Context, owner *user.User, fileID uuid.UUID) error {
	f, err := s.mustGetOwned(ctx, owner, fileID)
	if err != nil {
		return err
	}

	if err := s.blobs.DeleteFile(ctx, f.StorageKey); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrFileDeletion, err)
	}

	if err := s.fileRepo.DeleteWithQuota(ctx, owner.ID, f); err != nil {
		return fmt.Errorf("failed to delete file entry: %w", err)
	}
	return nil
}

func (s *FileService) mustGetOwned(ctx context.Context, owner *user.User, fileID uuid.UUID) (*fileInfo.File, error) {
	f, err := s.fileRepo.GetOwned(ctx, owner.ID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if f == nil {
		return nil, shared.ErrFileNotFound
	}
	return f, nil
}

// resolve applies the two-tier owner-then-grantee lookup and returns
// the file record when either tier matches.
func (s *FileService) resolve(ctx context.Context, caller *user.User, fileID uuid.UUID) (*fileInfo.File, error) {
	f, err := s.fileRepo.GetOwned(ctx, caller.ID, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	if f != nil {
		return f, nil
	}

	grant, err := s.grants.Get(ctx, fileID, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check share grant: %w", err)
	}
	if grant == nil {
		return nil, shared.ErrFileNotFound
	}
	f, err = s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shared file: %w", err)
	}
	if f == nil {
		return nil, shared.ErrFileNotFound
	}
	return f, nil
}

func generateStorageKey(username string, fileID uuid.UUID) string {
	return fmt.Sprintf("%s/%s-%d", username, fileID, time.Now().UTC().UnixNano())
}
