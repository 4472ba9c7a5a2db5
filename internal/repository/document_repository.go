package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	var saved struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO visit_documents (name, folder_id, visit_id, mime_type, content)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at
	`, doc.Name, doc.FolderID, doc.VisitID, doc.MimeType, doc.Content).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	doc.ID = saved.ID
	doc.CreatedAt = saved.CreatedAt
	return &doc, nil
}

func (r *DocumentRepository) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, folder_id, visit_id, mime_type, content, created_at
		FROM visit_documents
		WHERE id = ?
	`, id).Scan(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &doc, nil
}

// ListFolderDocuments returns document metadata without content bytes.
func (r *DocumentRepository) ListFolderDocuments(ctx context.Context, folderID uuid.UUID) ([]model.Document, error) {
	var docs []model.Document
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, folder_id, visit_id, mime_type, created_at
		FROM visit_documents
		WHERE folder_id = ?
		ORDER BY created_at DESC
	`, folderID).Scan(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
