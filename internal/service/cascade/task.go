package cascade

import (
	"github.com/google/uuid"
)

// Task is the unit of work handed to the deletion worker. Ownership of
// the target folder is verified synchronously before the task is
// admitted, so the worker performs no further auth checks.
type Task struct {
	FolderID uuid.UUID `json:"folder_id"`
	OwnerID  uint32    `json:"owner_id"`
}
