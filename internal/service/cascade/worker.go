package cascade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storage-service/internal/MinIO"
	"storage-service/internal/model/fileInfo"
	"storage-service/internal/model/folder"
	"storage-service/pkg/logger"
)

// State names the worker's progress through one deletion, for logs.
type State string

const (
	StateValidated       State = "validated"
	StateDiscovered      State = "discovered"
	StatePurgingStorage  State = "purging_storage"
	StatePurgingMetadata State = "purging_metadata"
	StateCommitted       State = "committed"
	StateAborted         State = "aborted"
)

type FolderStore interface {
	GetByID(ctx context.Context, ownerID uint32, folderID uuid.UUID) (*folder.Folder, error)
	Subtree(ctx context.Context, ownerID uint32, rootID uuid.UUID) ([]uuid.UUID, error)
	PurgeSubtree(ctx context.Context, ownerID uint32, folderIDs, fileIDs []uuid.UUID, totalSize int64) error
}

type FileStore interface {
	ListByFolderIDs(ctx context.Context, folderIDs []uuid.UUID) ([]*fileInfo.File, error)
}

type BlobStore interface {
	BulkDelete(ctx context.Context, keys []string) []MinIO.RemoveResult
}

// Worker consumes deletion tasks and removes the target subtree:
// blob objects first, then all metadata in a single transaction.
type Worker struct {
	queue   Queue
	folders FolderStore
	files   FileStore
	blobs   BlobStore
	log     *logger.Logger
}

func NewWorker(queue Queue, folders FolderStore, files FileStore, blobs BlobStore, log *logger.Logger) *Worker {
	return &Worker{
		queue:   queue,
		folders: folders,
		files:   files,
		blobs:   blobs,
		log:     log,
	}
}

// Run consumes tasks until ctx is cancelled. A failed task is logged
// and dropped; deletions are not retried.
func (w *Worker) Run(ctx context.Context) {
	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			w.log.Error("failed to dequeue deletion task", zap.Error(err))
			continue
		}
		if err := w.Process(ctx, task); err != nil {
			w.log.Error("cascade deletion aborted",
				zap.String("state", string(StateAborted)),
				zap.String("folder_id", task.FolderID.String()),
				zap.Uint32("owner_id", task.OwnerID),
				zap.Error(err))
		}
	}
}

// Process runs one deletion to completion. Metadata either fully
// commits or fully rolls back; storage-side deletions are best effort
// and are issued before the metadata transaction, so a rollback can at
// worst leave metadata pointing at blobs that are already gone.
func (w *Worker) Process(ctx context.Context, task *Task) error {
	target, err := w.folders.GetByID(ctx, task.OwnerID, task.FolderID)
	if err != nil {
		return err
	}
	if target == nil {
		// concurrent duplicate deletion already finished the job
		w.log.Info("deletion target already gone",
			zap.String("folder_id", task.FolderID.String()))
		return nil
	}
	w.logState(task, StateValidated)

	folderIDs, err := w.folders.Subtree(ctx, task.OwnerID, task.FolderID)
	if err != nil {
		return err
	}
	files, err := w.files.ListByFolderIDs(ctx, folderIDs)
	if err != nil {
		return err
	}

	var (
		fileIDs     = make([]uuid.UUID, 0, len(files))
		storageKeys = make([]string, 0, len(files))
		totalSize   int64
	)
	for _, f := range files {
		fileIDs = append(fileIDs, f.ID)
		storageKeys = append(storageKeys, f.StorageKey)
		totalSize += f.Size
	}
	w.logState(task, StateDiscovered,
		zap.Int("folders", len(folderIDs)),
		zap.Int("files", len(files)),
		zap.Int64("total_size", totalSize))

	w.logState(task, StatePurgingStorage)
	for _, failure := range w.blobs.BulkDelete(ctx, storageKeys) {
		// an orphaned blob is preferable to an undeletable folder
		w.log.Warn("failed to delete blob, leaving orphan",
			zap.String("storage_key", failure.Key),
			zap.Error(failure.Err))
	}

	w.logState(task, StatePurgingMetadata)
	if err := w.folders.PurgeSubtree(ctx, task.OwnerID, folderIDs, fileIDs, totalSize); err != nil {
		return err
	}

	w.logState(task, StateCommitted)
	return nil
}

func (w *Worker) logState(task *Task, state State, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("state", string(state)),
		zap.String("folder_id", task.FolderID.String()),
		zap.Uint32("owner_id", task.OwnerID),
	}, fields...)
	w.log.Info("cascade deletion", fields...)
}
