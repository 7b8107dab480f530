package fileRepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storage-service/internal/model/fileInfo"
)

type FileRepository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

const fileColumns = `id, folder_id, name, type, format, storage_key, size, encrypted_key, encrypted_iv, created_at`

func scanFile(row pgx.Row) (*fileInfo.File, error) {
	var f fileInfo.File
	err := row.Scan(&f.ID, &f.FolderID, &f.Name, &f.Type, &f.Format,
		&f.StorageKey, &f.Size, &f.EncryptedKey, &f.EncryptedIV, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID resolves a file regardless of ownership. Callers must gate
// access themselves; the share-grant fallback path uses this.
func (r *FileRepository) GetByID(ctx context.Context, fileID uuid.UUID) (*fileInfo.File, error) {
	return scanFile(r.db.QueryRow(ctx,
		`SELECT `+fileColumns+`
		 FROM files WHERE id = $1`, fileID))
}

// GetOwned resolves a file only when its folder belongs to ownerID.
// The owning user is never stored on the file row; it is looked up
// through the folder to keep one source of truth.
func (r *FileRepository) GetOwned(ctx context.Context, ownerID uint32, fileID uuid.UUID) (*fileInfo.File, error) {
	return scanFile(r.db.QueryRow(ctx,
		`SELECT f.id, f.folder_id, f.name, f.type, f.format, f.storage_key,
		        f.size, f.encrypted_key, f.encrypted_iv, f.created_at
		 FROM files f
		 JOIN folders d ON d.id = f.folder_id
		 WHERE f.id = $1 AND d.owner_id = $2`, fileID, ownerID))
}

func (r *FileRepository) ExistsInFolder(ctx context.Context, folderID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM files WHERE folder_id = $1 AND name = $2)`,
		folderID, name).Scan(&exists)
	return exists, err
}

func (r *FileRepository) ListByFolder(ctx context.Context, folderID uuid.UUID) ([]*fileInfo.File, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fileColumns+`
		 FROM files WHERE folder_id = $1 ORDER BY name`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFiles(rows)
}

// ListByFolderIDs returns every file under any of the given folders,
// used by cascade discovery after the subtree closure is known.
func (r *FileRepository) ListByFolderIDs(ctx context.Context, folderIDs []uuid.UUID) ([]*fileInfo.File, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+fileColumns+`
		 FROM files WHERE folder_id = ANY($1)`, folderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFiles(rows)
}

func collectFiles(rows pgx.Rows) ([]*fileInfo.File, error) {
	var files []*fileInfo.File
	for rows.Next() {
		var f fileInfo.File
		if err := rows.Scan(&f.ID, &f.FolderID, &f.Name, &f.Type, &f.Format,
			&f.StorageKey, &f.Size, &f.EncryptedKey, &f.EncryptedIV, &f.CreatedAt); err != nil {
			return nil, err
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// CreateWithQuota inserts the file row and charges the owner's quota in
// one transaction. The blob is written by the caller beforehand; if
// this fails the blob becomes an orphan, which the caller compensates.
func (r *FileRepository) CreateWithQuota(ctx context.Context, ownerID uint32, f *fileInfo.File) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO files (`+fileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		f.ID, f.FolderID, f.Name, f.Type, f.Format, f.StorageKey,
		f.Size, f.EncryptedKey, f.EncryptedIV, f.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		"UPDATE users SET space_taken = space_taken + $1 WHERE id = $2",
		f.Size, ownerID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteWithQuota removes the file's share grants, releases the owner's
// quota and drops the row, all in one transaction. The blob has already
// been deleted by the caller.
func (r *FileRepository) DeleteWithQuota(ctx context.Context, ownerID uint32, f *fileInfo.File) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM shared_files WHERE file_id = $1", f.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		"UPDATE users SET space_taken = space_taken - $1 WHERE id = $2",
		f.Size, ownerID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, "DELETE FROM files WHERE id = $1", f.ID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *FileRepository) Rename(ctx context.Context, fileID uuid.UUID, newName string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE files SET name = $1 WHERE id = $2",
		newName, fileID)
	return err
}
