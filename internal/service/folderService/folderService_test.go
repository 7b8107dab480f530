package folderService_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"storage-service/internal/model/fileInfo"
	"storage-service/internal/model/folder"
	"storage-service/internal/model/user"
	"storage-service/internal/service/cascade"
	"storage-service/internal/service/folderService"
	"storage-service/internal/shared"
)

type fakeFolderRepo struct {
	folders map[uuid.UUID]*folder.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[uuid.UUID]*folder.Folder)}
}

func (r *fakeFolderRepo) GetRoot(_ context.Context, ownerID uint32) (*folder.Folder, error) {
	for _, f := range r.folders {
		if f.OwnerID == ownerID && f.ParentID == nil {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFolderRepo) GetByID(_ context.Context, ownerID uint32, folderID uuid.UUID) (*folder.Folder, error) {
	f, ok := r.folders[folderID]
	if !ok || f.OwnerID != ownerID {
		return nil, nil
	}
	return f, nil
}

func (r *fakeFolderRepo) ExistsInParent(_ context.Context, ownerID uint32, parentID uuid.UUID, name string) (bool, error) {
	for _, f := range r.folders {
		if f.OwnerID == ownerID && f.ParentID != nil && *f.ParentID == parentID && f.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFolderRepo) Create(_ context.Context, f *folder.Folder) error {
	r.folders[f.ID] = f
	return nil
}

func (r *fakeFolderRepo) Rename(_ context.Context, folderID uuid.UUID, newName string) error {
	r.folders[folderID].Name = newName
	return nil
}

func (r *fakeFolderRepo) ListSubfolders(_ context.Context, parentID uuid.UUID) ([]*folder.Folder, error) {
	var subfolders []*folder.Folder
	for _, f := range r.folders {
		if f.ParentID != nil && *f.ParentID == parentID {
			subfolders = append(subfolders, f)
		}
	}
	return subfolders, nil
}

func (r *fakeFolderRepo) addRoot(ownerID uint32) *folder.Folder {
	root := &folder.Folder{ID: uuid.New(), OwnerID: ownerID, Name: "root"}
	r.folders[root.ID] = root
	return root
}

type fakeFileLister struct {
	files map[uuid.UUID][]*fileInfo.File
}

func (l *fakeFileLister) ListByFolder(_ context.Context, folderID uuid.UUID) ([]*fileInfo.File, error) {
	return l.files[folderID], nil
}

type fakeQueue struct {
	tasks []cascade.Task
}

func (q *fakeQueue) Enqueue(_ context.Context, task cascade.Task) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func setup() (*folderService.FolderService, *fakeFolderRepo, *fakeQueue) {
	folders := newFakeFolderRepo()
	queue := &fakeQueue{}
	svc := folderService.New(folders, &fakeFileLister{files: map[uuid.UUID][]*fileInfo.File{}}, queue)
	return svc, folders, queue
}

var owner = &user.User{ID: 1, Username: "alice"}

func TestGetRootFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the unique root", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)

		view, err := svc.GetRootFolder(ctx, owner)
		assert.NoError(t, err)
		assert.Equal(t, root.ID, view.Folder.ID)
	})

	t.Run("missing root is an invariant violation", func(t *testing.T) {
		svc, _, _ := setup()

		_, err := svc.GetRootFolder(ctx, owner)
		assert.ErrorIs(t, err, shared.ErrRootMissing)
	})
}

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates under an owned parent", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)

		created, err := svc.CreateFolder(ctx, owner, root.ID, "docs")
		assert.NoError(t, err)
		assert.Equal(t, "docs", created.Name)
		assert.Equal(t, root.ID, *created.ParentID)
	})

	t.Run("duplicate sibling name conflicts", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)

		_, err := svc.CreateFolder(ctx, owner, root.ID, "docs")
		assert.NoError(t, err)
		_, err = svc.CreateFolder(ctx, owner, root.ID, "docs")
		assert.ErrorIs(t, err, shared.ErrFolderNameTaken)
	})

	t.Run("same name under a different parent is fine", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)

		docs, err := svc.CreateFolder(ctx, owner, root.ID, "docs")
		assert.NoError(t, err)
		_, err = svc.CreateFolder(ctx, owner, docs.ID, "docs")
		assert.NoError(t, err)
	})

	t.Run("same name for a different owner is fine", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)
		other := &user.User{ID: 2, Username: "bob"}
		otherRoot := folders.addRoot(other.ID)

		_, err := svc.CreateFolder(ctx, owner, root.ID, "docs")
		assert.NoError(t, err)
		_, err = svc.CreateFolder(ctx, other, otherRoot.ID, "docs")
		assert.NoError(t, err)
	})

	t.Run("unowned parent is indistinguishable from absent", func(t *testing.T) {
		svc, folders, _ := setup()
		folders.addRoot(owner.ID)
		other := folders.addRoot(2)

		_, err := svc.CreateFolder(ctx, owner, other.ID, "docs")
		assert.ErrorIs(t, err, shared.ErrFolderNotFound)
	})

	t.Run("CreateInRoot resolves the root first", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)

		created, err := svc.CreateInRoot(ctx, owner, "docs")
		assert.NoError(t, err)
		assert.Equal(t, root.ID, *created.ParentID)
	})
}

func TestRenameFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("renames a non-root folder", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)
		docs, _ := svc.CreateFolder(ctx, owner, root.ID, "docs")

		err := svc.RenameFolder(ctx, owner, docs.ID, "documents")
		assert.NoError(t, err)
		assert.Equal(t, "documents", folders.folders[docs.ID].Name)
	})

	t.Run("root can never be renamed", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)

		err := svc.RenameFolder(ctx, owner, root.ID, "still-root")
		assert.ErrorIs(t, err, shared.ErrCannotModifyRoot)
	})

	t.Run("conflicts with an existing sibling", func(t *testing.T) {
		svc, folders, _ := setup()
		root := folders.addRoot(owner.ID)
		_, _ = svc.CreateFolder(ctx, owner, root.ID, "docs")
		pics, _ := svc.CreateFolder(ctx, owner, root.ID, "pics")

		err := svc.RenameFolder(ctx, owner, pics.ID, "docs")
		assert.ErrorIs(t, err, shared.ErrFolderNameTaken)
	})
}

func TestDeleteFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("admits a validated target for deletion", func(t *testing.T) {
		svc, folders, queue := setup()
		root := folders.addRoot(owner.ID)
		docs, _ := svc.CreateFolder(ctx, owner, root.ID, "docs")

		err := svc.DeleteFolder(ctx, owner, docs.ID)
		assert.NoError(t, err)
		if assert.Len(t, queue.tasks, 1) {
			assert.Equal(t, cascade.Task{FolderID: docs.ID, OwnerID: owner.ID}, queue.tasks[0])
		}
	})

	t.Run("root can never be deleted", func(t *testing.T) {
		svc, folders, queue := setup()
		root := folders.addRoot(owner.ID)

		err := svc.DeleteFolder(ctx, owner, root.ID)
		assert.ErrorIs(t, err, shared.ErrCannotModifyRoot)
		assert.Empty(t, queue.tasks)
	})

	t.Run("absent folder is not admitted", func(t *testing.T) {
		svc, folders, queue := setup()
		folders.addRoot(owner.ID)

		err := svc.DeleteFolder(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, shared.ErrFolderNotFound)
		assert.Empty(t, queue.tasks)
	})
}

func TestGetFolder(t *testing.T) {
	ctx := context.Background()

	t.Run("materializes children", func(t *testing.T) {
		folders := newFakeFolderRepo()
		root := folders.addRoot(owner.ID)
		files := &fakeFileLister{files: map[uuid.UUID][]*fileInfo.File{
			root.ID: {{ID: uuid.New(), FolderID: root.ID, Name: "notes.txt"}},
		}}
		svc := folderService.New(folders, files, &fakeQueue{})

		docs, _ := svc.CreateFolder(ctx, owner, root.ID, "docs")

		view, err := svc.GetFolder(ctx, owner, root.ID)
		assert.NoError(t, err)
		if assert.Len(t, view.Subfolders, 1) {
			assert.Equal(t, docs.ID, view.Subfolders[0].ID)
		}
		if assert.Len(t, view.Files, 1) {
			assert.Equal(t, "notes.txt", view.Files[0].Name)
		}
	})

	t.Run("absent folder", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.GetFolder(ctx, owner, uuid.New())
		assert.ErrorIs(t, err, shared.ErrFolderNotFound)
	})
}
