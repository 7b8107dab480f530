package fileInfo

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata record for one encrypted blob. Content never
// passes through this struct; StorageKey locates it in the blob store.
// Size is immutable after creation, a re-upload is a new file.
type File struct {
	ID           uuid.UUID `json:"id"`
	FolderID     uuid.UUID `json:"folder_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Format       string    `json:"format"`
	StorageKey   string    `json:"storage_key"`
	Size         int64     `json:"size"`
	EncryptedKey string    `json:"encrypted_key"`
	EncryptedIV  string    `json:"encrypted_iv"`
	CreatedAt    time.Time `json:"created_at"`
}

// SharedFile grants one non-owner read access to one file. The key and
// IV are re-encrypted for the recipient by the client; the server only
// stores them.
type SharedFile struct {
	ID                uuid.UUID `json:"id"`
	FileID            uuid.UUID `json:"file_id"`
	InitiatorUserID   uint32    `json:"initiator_user_id"`
	DestinationUserID uint32    `json:"destination_user_id"`
	EncKey            string    `json:"enc_key"`
	EncIV             string    `json:"enc_iv"`
}
