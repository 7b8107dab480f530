package shareRepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storage-service/internal/model/fileInfo"
)

type ShareRepository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *ShareRepository {
	return &ShareRepository{db: db}
}

// InitiatedGrant is one row of the shared-by-me view.
type InitiatedGrant struct {
	File                fileInfo.File
	DestinationUserID   uint32
	DestinationUsername string
	EncKey              string
	EncIV               string
}

// ReceivedGrant is one row of the shared-with-me view.
type ReceivedGrant struct {
	File          fileInfo.File
	OwnerID       uint32
	OwnerUsername string
	EncKey        string
	EncIV         string
}

func (r *ShareRepository) Get(ctx context.Context, fileID uuid.UUID, destUserID uint32) (*fileInfo.SharedFile, error) {
	var s fileInfo.SharedFile
	err := r.db.QueryRow(ctx,
		`SELECT id, file_id, initiator_user_id, destination_user_id, enc_key, enc_iv
		 FROM shared_files WHERE file_id = $1 AND destination_user_id = $2`,
		fileID, destUserID).
		Scan(&s.ID, &s.FileID, &s.InitiatorUserID, &s.DestinationUserID, &s.EncKey, &s.EncIV)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShareRepository) Create(ctx context.Context, s *fileInfo.SharedFile) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO shared_files (id, file_id, initiator_user_id, destination_user_id, enc_key, enc_iv)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.FileID, s.InitiatorUserID, s.DestinationUserID, s.EncKey, s.EncIV)
	return err
}

func (r *ShareRepository) Delete(ctx context.Context, fileID uuid.UUID, destUserID uint32) error {
	_, err := r.db.Exec(ctx,
		"DELETE FROM shared_files WHERE file_id = $1 AND destination_user_id = $2",
		fileID, destUserID)
	return err
}

// ListRecipients returns the user ids a file is currently shared with,
// for the owner's full metadata view.
func (r *ShareRepository) ListRecipients(ctx context.Context, fileID uuid.UUID) ([]uint32, error) {
	rows, err := r.db.Query(ctx,
		"SELECT destination_user_id FROM shared_files WHERE file_id = $1",
		fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []uint32
	for rows.Next() {
		var id uint32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		recipients = append(recipients, id)
	}
	return recipients, rows.Err()
}

func (r *ShareRepository) ListByInitiator(ctx context.Context, userID uint32) ([]*InitiatedGrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT f.id, f.folder_id, f.name, f.type, f.format, f.storage_key,
		        f.size, f.encrypted_key, f.encrypted_iv, f.created_at,
		        s.destination_user_id, u.username, s.enc_key, s.enc_iv
		 FROM shared_files s
		 JOIN files f ON f.id = s.file_id
		 JOIN users u ON u.id = s.destination_user_id
		 WHERE s.initiator_user_id = $1
		 ORDER BY f.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*InitiatedGrant
	for rows.Next() {
		var g InitiatedGrant
		if err := rows.Scan(
			&g.File.ID, &g.File.FolderID, &g.File.Name, &g.File.Type, &g.File.Format,
			&g.File.StorageKey, &g.File.Size, &g.File.EncryptedKey, &g.File.EncryptedIV,
			&g.File.CreatedAt, &g.DestinationUserID, &g.DestinationUsername, &g.EncKey, &g.EncIV,
		); err != nil {
			return nil, err
		}
		grants = append(grants, &g)
	}
	return grants, rows.Err()
}

func (r *ShareRepository) ListByDestination(ctx context.Context, userID uint32) ([]*ReceivedGrant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT f.id, f.folder_id, f.name, f.type, f.format, f.storage_key,
		        f.size, f.encrypted_key, f.encrypted_iv, f.created_at,
		        s.initiator_user_id, u.username, s.enc_key, s.enc_iv
		 FROM shared_files s
		 JOIN files f ON f.id = s.file_id
		 JOIN users u ON u.id = s.initiator_user_id
		 WHERE s.destination_user_id = $1
		 ORDER BY f.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*ReceivedGrant
	for rows.Next() {
		var g ReceivedGrant
		if err := rows.Scan(
			&g.File.ID, &g.File.FolderID, &g.File.Name, &g.File.Type, &g.File.Format,
			&g.File.StorageKey, &g.File.Size, &g.File.EncryptedKey, &g.File.EncryptedIV,
			&g.File.CreatedAt, &g.OwnerID, &g.OwnerUsername, &g.EncKey, &g.EncIV,
		); err != nil {
			return nil, err
		}
		grants = append(grants, &g)
	}
	return grants, rows.Err()
}
