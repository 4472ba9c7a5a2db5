package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

// FolderService serves the read-only folder/document browsing surface.
type FolderService struct {
	folders   FolderStore
	documents DocumentStore
}

func NewFolderService(folders FolderStore, documents DocumentStore) *FolderService {
	return &FolderService{folders: folders, documents: documents}
}

type FolderTree struct {
	Folder    model.Folder
	Children  []model.Folder
	Documents []model.Document
}

func (s *FolderService) ListRoots(ctx context.Context) ([]model.Folder, error) {
	return s.folders.ListRootFolders(ctx)
}

func (s *FolderService) GetTree(ctx context.Context, id uuid.UUID) (*FolderTree, error) {
	folder, err := s.folders.GetFolder(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	children, err := s.folders.ListChildFolders(ctx, id)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.ListFolderDocuments(ctx, id)
	if err != nil {
		return nil, err
	}
	return &FolderTree{Folder: *folder, Children: children, Documents: documents}, nil
}

func (s *FolderService) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	doc, err := s.documents.GetDocument(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}
