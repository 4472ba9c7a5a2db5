package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var row struct {
		ID      uuid.UUID
		Name    string
		Address string
		Email   string
		Phone   string
	}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			COALESCE(address, '') AS address,
			COALESCE(email, '') AS email,
			COALESCE(phone, '') AS phone
		FROM clients
		WHERE id = ?
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.Client{
		ID:      row.ID,
		Name:    row.Name,
		Address: row.Address,
		Email:   row.Email,
		Phone:   row.Phone,
	}, nil
}

func (r *ClientRepository) CreateClient(ctx context.Context, client model.Client) (*model.Client, error) {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO clients (name, address, email, phone)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, COALESCE(address, '') AS address, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone
	`, client.Name, client.Address, client.Email, client.Phone).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ClientRepository) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, COALESCE(address, '') AS address, COALESCE(email, '') AS email, COALESCE(phone, '') AS phone
		FROM clients
		ORDER BY name ASC
	`).Scan(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
