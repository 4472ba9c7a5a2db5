package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

type FolderRepository struct {
	db *gorm.DB
}

func NewFolderRepository(db *gorm.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

type folderRow struct {
	ID            uuid.UUID
	Name          string
	ParentID      *uuid.UUID
	ClientID      *uuid.UUID
	FolderMonth   *time.Time
	DocumentCount int64
	CreatedAt     time.Time
}

const folderSelect = `
	SELECT
		f.id,
		f.name,
		f.parent_id,
		f.client_id,
		f.folder_month,
		f.created_at,
		(SELECT COUNT(*) FROM visit_documents d WHERE d.folder_id = f.id) AS document_count
	FROM visit_folders f
`

func (row folderRow) toModel() model.Folder {
	folder := model.Folder{
		ID:            row.ID,
		Name:          row.Name,
		ParentID:      row.ParentID,
		ClientID:      row.ClientID,
		DocumentCount: row.DocumentCount,
		CreatedAt:     row.CreatedAt,
	}
	if row.FolderMonth != nil {
		month := model.MonthOf(*row.FolderMonth)
		folder.FolderMonth = &month
	}
	return folder
}

// CreateContractFolders creates the contract root folder plus one child
// per month in a single transaction and returns the root.
func (r *FolderRepository) CreateContractFolders(ctx context.Context, name string, clientID uuid.UUID, months []model.Month) (*model.Folder, error) {
	var rootID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`
			INSERT INTO visit_folders (name, client_id)
			VALUES (?, ?)
			RETURNING id
		`, name, clientID).Scan(&rootID).Error; err != nil {
			return err
		}
		for _, month := range months {
			if err := tx.Exec(`
				INSERT INTO visit_folders (name, parent_id, client_id, folder_month)
				VALUES (?, ?, ?, ?)
			`, month.FolderName(), rootID, clientID, month.First()).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetFolder(ctx, rootID)
}

func (r *FolderRepository) GetFolder(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	var row folderRow
	err := r.db.WithContext(ctx).Raw(folderSelect+` WHERE f.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	folder := row.toModel()
	return &folder, nil
}

func (r *FolderRepository) ListRootFolders(ctx context.Context) ([]model.Folder, error) {
	return r.list(ctx, folderSelect+` WHERE f.parent_id IS NULL ORDER BY f.name ASC`)
}

func (r *FolderRepository) ListChildFolders(ctx context.Context, parentID uuid.UUID) ([]model.Folder, error) {
	return r.list(ctx, folderSelect+` WHERE f.parent_id = ? ORDER BY f.folder_month ASC`, parentID)
}

func (r *FolderRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Folder, error) {
	var rows []folderRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	folders := make([]model.Folder, 0, len(rows))
	for _, row := range rows {
		folders = append(folders, row.toModel())
	}
	return folders, nil
}

func (r *FolderRepository) FindMonthFolder(ctx context.Context, parentID uuid.UUID, month model.Month) (*model.Folder, error) {
	var row folderRow
	err := r.db.WithContext(ctx).Raw(
		folderSelect+` WHERE f.parent_id = ? AND f.folder_month = ?`,
		parentID, month.First(),
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	folder := row.toModel()
	return &folder, nil
}

// EnsureMonthFolder finds or creates the month subfolder under a root.
// The partial unique index on (parent_id, folder_month) makes the insert
// race-safe; on conflict the existing row wins.
func (r *FolderRepository) EnsureMonthFolder(ctx context.Context, parentID uuid.UUID, month model.Month) (*model.Folder, error) {
	folder, err := r.FindMonthFolder(ctx, parentID, month)
	if err == nil {
		return folder, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	var clientID *uuid.UUID
	parent, err := r.GetFolder(ctx, parentID)
	if err != nil {
		return nil, err
	}
	clientID = parent.ClientID

	if err := r.db.WithContext(ctx).Exec(`
		INSERT INTO visit_folders (name, parent_id, client_id, folder_month)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (parent_id, folder_month) WHERE folder_month IS NOT NULL DO NOTHING
	`, month.FolderName(), parentID, clientID, month.First()).Error; err != nil {
		return nil, err
	}
	return r.FindMonthFolder(ctx, parentID, month)
}

// NonContractedRoot returns the shared root folder for ad-hoc visits,
// seeded by the migrations.
func (r *FolderRepository) NonContractedRoot(ctx context.Context) (*model.Folder, error) {
	var row folderRow
	err := r.db.WithContext(ctx).Raw(
		folderSelect + ` WHERE f.parent_id IS NULL AND f.client_id IS NULL AND f.name = 'Non-contracted'`,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	folder := row.toModel()
	return &folder, nil
}
