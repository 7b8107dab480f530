package folderRepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storage-service/internal/model/folder"
)

type FolderRepository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) GetRoot(ctx context.Context, ownerID uint32) (*folder.Folder, error) {
	var f folder.Folder
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, parent_id, name
		 FROM folders WHERE owner_id = $1 AND parent_id IS NULL`, ownerID).
		Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID resolves a folder only when it belongs to ownerID. Absent and
// not-owned are indistinguishable to the caller.
func (r *FolderRepository) GetByID(ctx context.Context, ownerID uint32, folderID uuid.UUID) (*folder.Folder, error) {
	var f folder.Folder
	err := r.db.QueryRow(ctx,
		`SELECT id, owner_id, parent_id, name
		 FROM folders WHERE id = $1 AND owner_id = $2`, folderID, ownerID).
		Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FolderRepository) ExistsInParent(ctx context.Context, ownerID uint32, parentID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM folders
			WHERE owner_id = $1 AND parent_id = $2 AND name = $3)`,
		ownerID, parentID, name).Scan(&exists)
	return exists, err
}

func (r *FolderRepository) Create(ctx context.Context, f *folder.Folder) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO folders (id, owner_id, parent_id, name)
		 VALUES ($1, $2, $3, $4)`,
		f.ID, f.OwnerID, f.ParentID, f.Name)
	return err
}

// CreateRoot provisions the single parentless folder for a new account.
func (r *FolderRepository) CreateRoot(ctx context.Context, ownerID uint32) (*folder.Folder, error) {
	f := &folder.Folder{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "root",
	}
	if err := r.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FolderRepository) Rename(ctx context.Context, folderID uuid.UUID, newName string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE folders SET name = $1 WHERE id = $2",
		newName, folderID)
	return err
}

func (r *FolderRepository) ListSubfolders(ctx context.Context, parentID uuid.UUID) ([]*folder.Folder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, owner_id, parent_id, name
		 FROM folders WHERE parent_id = $1 ORDER BY name`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []*folder.Folder
	for rows.Next() {
		var f folder.Folder
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name); err != nil {
			return nil, err
		}
		folders = append(folders, &f)
	}
	return folders, rows.Err()
}

// Subtree returns the ids of every folder in the tree rooted at rootID,
// the root included. A single recursive query gives one consistent
// snapshot of the closure; it is never assembled across round trips.
func (r *FolderRepository) Subtree(ctx context.Context, ownerID uint32, rootID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`WITH RECURSIVE subtree AS (
			SELECT id FROM folders WHERE id = $1 AND owner_id = $2
			UNION ALL
			SELECT f.id FROM folders f
			JOIN subtree s ON f.parent_id = s.id
		 )
		 SELECT id FROM subtree`, rootID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PurgeSubtree removes all metadata of a discovered subtree in one
// transaction: share grants referencing the files, the file rows, the
// folder rows, and the owner's quota decrement. Either everything
// commits or nothing does.
func (r *FolderRepository) PurgeSubtree(ctx context.Context, ownerID uint32, folderIDs, fileIDs []uuid.UUID, totalSize int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if len(fileIDs) > 0 {
		_, err = tx.Exec(ctx, "DELETE FROM shared_files WHERE file_id = ANY($1)", fileIDs)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, "DELETE FROM files WHERE id = ANY($1)", fileIDs)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx, "DELETE FROM folders WHERE id = ANY($1)", folderIDs)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		"UPDATE users SET space_taken = space_taken - $1 WHERE id = $2",
		totalSize, ownerID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
