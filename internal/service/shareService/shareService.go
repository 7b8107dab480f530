package shareService

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storage-service/internal/model/fileInfo"
	"storage-service/internal/model/user"
	"storage-service/internal/repository/shareRepo"
	"storage-service/internal/shared"
)

type ShareRepository interface {
	Get(ctx context.Context, fileID uuid.UUID, destUserID uint32) (*fileInfo.SharedFile, error)
	Create(ctx context.Context, s *fileInfo.SharedFile) error
	Delete(ctx context.Context, fileID uuid.UUID, destUserID uint32) error
	ListByInitiator(ctx context.Context, userID uint32) ([]*shareRepo.InitiatedGrant, error)
	ListByDestination(ctx context.Context, userID uint32) ([]*shareRepo.ReceivedGrant, error)
}

type FileResolver interface {
	GetOwned(ctx context.Context, ownerID uint32, fileID uuid.UUID) (*fileInfo.File, error)
}

type UserDirectory interface {
	Exists(ctx context.Context, id uint32) (bool, error)
}

// Recipient identifies one user a grant targets.
type Recipient struct {
	ID       uint32 `json:"id"`
	Username string `json:"username"`
}

// SharedByFile groups every grant the owner initiated for one file.
type SharedByFile struct {
	File       fileInfo.File
	Recipients []Recipient
}

// SharedWithFile is one file somebody else shared with the caller.
type SharedWithFile struct {
	File         fileInfo.File
	Owner        Recipient
	EncryptedKey string
	EncryptedIV  string
}

type ShareService struct {
	shareRepo ShareRepository
	fileRepo  FileResolver
	users     UserDirectory
}

func New(shareRepo ShareRepository, fileRepo FileResolver, users UserDirectory) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		fileRepo:  fileRepo,
		users:     users,
	}
}

// Share grants destUserID read access to one of the owner's files. The
// key and IV arrive re-encrypted for the recipient.
func (s *ShareService) Share(ctx context.Context, owner *user.User, fileID uuid.UUID, destUserID uint32, encKey, encIV string) error {
	if destUserID == owner.ID {
		return shared.ErrCannotShareWithSelf
	}

	if err := s.checkOwnership(ctx, owner, fileID); err != nil {
		return err
	}
	if err := s.checkRecipient(ctx, destUserID); err != nil {
		return err
	}

	existing, err := s.shareRepo.Get(ctx, fileID, destUserID)
	if err != nil {
		return fmt.Errorf("failed to check share grant: %w", err)
	}
	if existing != nil {
		return shared.ErrAlreadyShared
	}

	grant := &fileInfo.SharedFile{
		ID:                uuid.New(),
		FileID:            fileID,
		InitiatorUserID:   owner.ID,
		DestinationUserID: destUserID,
		EncKey:            encKey,
		EncIV:             encIV,
	}
	if err := s.shareRepo.Create(ctx, grant); err != nil {
		return fmt.Errorf("failed to create share grant: %w", err)
	}
	return nil
}

func (s *ShareService) Revoke(ctx context.Context, owner *user.User, fileID uuid.UUID, destUserID uint32) error {
	if err := s.checkOwnership(ctx, owner, fileID); err != nil {
		return err
	}
	if err := s.checkRecipient(ctx, destUserID); err != nil {
		return err
	}

	existing, err := s.shareRepo.Get(ctx, fileID, destUserID)
	if err != nil {
		return fmt.Errorf("failed to check share grant: %w", err)
	}
	if existing == nil {
		return shared.ErrNotShared
	}

	if err := s.shareRepo.Delete(ctx, fileID, destUserID); err != nil {
		return fmt.Errorf("failed to revoke share grant: %w", err)
	}
	return nil
}

// ListSharedBy aggregates every grant the caller initiated, one entry
// per file with all its recipients.
func (s *ShareService) ListSharedBy(ctx context.Context, caller *user.User) ([]*SharedByFile, error) {
	grants, err := s.shareRepo.ListByInitiator(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list initiated grants: %w", err)
	}

	var (
		result []*SharedByFile
		byFile = make(map[uuid.UUID]*SharedByFile)
	)
	for _, g := range grants {
		entry, ok := byFile[g.File.ID]
		if !ok {
			entry = &SharedByFile{File: g.File}
			byFile[g.File.ID] = entry
			result = append(result, entry)
		}
		entry.Recipients = append(entry.Recipients, Recipient{
			ID:       g.DestinationUserID,
			Username: g.DestinationUsername,
		})
	}
	return result, nil
}

func (s *ShareService) ListSharedWith(ctx context.Context, caller *user.User) ([]*SharedWithFile, error) {
	grants, err := s.shareRepo.ListByDestination(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list received grants: %w", err)
	}

	result := make([]*SharedWithFile, 0, len(grants))
	for _, g := range grants {
		result = append(result, &SharedWithFile{
			File:         g.File,
			Owner:        Recipient{ID: g.OwnerID, Username: g.OwnerUsername},
			EncryptedKey: g.EncKey,
			EncryptedIV:  g.EncIV,
		})
	}
	return result, nil
}

func (s *ShareService) checkOwnership(ctx context.Context, owner *user.User, fileID uuid.UUID) error {
	f, err := s.fileRepo.GetOwned(ctx, owner.ID, fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}
	if f == nil {
		return shared.ErrFileNotFound
	}
	return nil
}

func (s *ShareService) checkRecipient(ctx context.Context, destUserID uint32) error {
	exists, err := s.users.Exists(ctx, destUserID)
	if err != nil {
		return fmt.Errorf("failed to look up destination user: %w", err)
	}
	if !exists {
		return shared.ErrDestinationUserNotFound
	}
	return nil
}
