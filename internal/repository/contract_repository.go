package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

type contractRow struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	VisitsPerMonth int
	State          string
	RootFolderID   *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClientName     string
	ClientAddress  string
	ClientEmail    string
	ClientPhone    string
}

const contractSelect = `
	SELECT
		c.id,
		c.client_id,
		c.name,
		c.start_date,
		c.end_date,
		c.visits_per_month,
		c.state,
		c.root_folder_id,
		c.created_at,
		c.updated_at,
		cl.name AS client_name,
		COALESCE(cl.address, '') AS client_address,
		COALESCE(cl.email, '') AS client_email,
		COALESCE(cl.phone, '') AS client_phone
	FROM contracts c
	JOIN clients cl ON cl.id = c.client_id
`

func (row contractRow) toModel() model.Contract {
	return model.Contract{
		ID:             row.ID,
		ClientID:       row.ClientID,
		Name:           row.Name,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		VisitsPerMonth: row.VisitsPerMonth,
		State:          model.ContractState(row.State),
		RootFolderID:   row.RootFolderID,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
		Client: model.Client{
			ID:      row.ClientID,
			Name:    row.ClientName,
			Address: row.ClientAddress,
			Email:   row.ClientEmail,
			Phone:   row.ClientPhone,
		},
	}
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(contractSelect+` WHERE c.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	contract := row.toModel()
	return &contract, nil
}

func (r *ContractRepository) CreateContract(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	var id uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contracts (client_id, name, start_date, end_date, visits_per_month, state)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		contract.ClientID,
		contract.Name,
		contract.StartDate,
		contract.EndDate,
		contract.VisitsPerMonth,
		string(model.ContractStateDraft),
	).Scan(&id).Error
	if err != nil {
		return nil, err
	}
	return r.GetContract(ctx, id)
}

func (r *ContractRepository) ListContracts(ctx context.Context) ([]model.Contract, error) {
	return r.list(ctx, contractSelect+` ORDER BY c.created_at DESC`)
}

func (r *ContractRepository) ListContractsByState(ctx context.Context, state model.ContractState) ([]model.Contract, error) {
	return r.list(ctx, contractSelect+` WHERE c.state = ? ORDER BY c.created_at ASC`, string(state))
}

func (r *ContractRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Contract, error) {
	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	contracts := make([]model.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, row.toModel())
	}
	return contracts, nil
}

func (r *ContractRepository) UpdateContractState(ctx context.Context, id uuid.UUID, state model.ContractState) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts SET state = ?, updated_at = NOW() WHERE id = ?
	`, string(state), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContractRepository) SetRootFolder(ctx context.Context, id, folderID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts SET root_folder_id = ?, updated_at = NOW() WHERE id = ?
	`, folderID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CloseEndedContracts flips IN_PROGRESS contracts whose end date falls
// before the given month to CLOSED. Returns how many were closed.
func (r *ContractRepository) CloseEndedContracts(ctx context.Context, before model.Month) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET state = 'CLOSED', updated_at = NOW()
		WHERE state = 'IN_PROGRESS' AND end_date < ?
	`, before.First())
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
