package model

import (
	"time"

	"github.com/google/uuid"
)

// Folder is one node of the two-level document tree: a root folder per
// contracted client (plus the shared non-contracted root), with one child
// folder per calendar month.
type Folder struct {
	ID            uuid.UUID
	Name          string
	ParentID      *uuid.UUID
	ClientID      *uuid.UUID
	FolderMonth   *Month // set on month folders only
	DocumentCount int64
	CreatedAt     time.Time
}

func (f Folder) IsRoot() bool {
	return f.ParentID == nil
}

type Document struct {
	ID        uuid.UUID
	Name      string
	FolderID  uuid.UUID
	VisitID   *uuid.UUID
	MimeType  string
	Content   []byte
	CreatedAt time.Time
}
