package folder

import (
	"github.com/google/uuid"
)

// Folder is one node of a user's tree. The root has ParentID == nil;
// exactly one root exists per owner, created at provisioning.
type Folder struct {
	ID       uuid.UUID  `json:"id"`
	OwnerID  uint32     `json:"owner_id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Name     string     `json:"name"`
}

func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
