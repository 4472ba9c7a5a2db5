package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

type VisitRepository struct {
	db        *gorm.DB
	refPrefix string
}

func NewVisitRepository(db *gorm.DB, refPrefix string) *VisitRepository {
	return &VisitRepository{db: db, refPrefix: refPrefix}
}

type visitRow struct {
	ID               uuid.UUID
	Reference        string
	ContractID       *uuid.UUID
	ClientID         uuid.UUID
	FolderID         *uuid.UUID
	VisitMonth       time.Time
	SequenceNo       int
	VisitDate        time.Time
	State            string
	Kind             string
	EngineerName     string
	ProblemType      string
	EngineerComments string
	Address          string
	ExtraReason      string
	ReportDocumentID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

const visitSelect = `
	SELECT
		v.id,
		v.reference,
		v.contract_id,
		v.client_id,
		v.folder_id,
		v.visit_month,
		v.sequence_no,
		v.visit_date,
		v.state,
		v.kind,
		COALESCE(v.engineer_name, '') AS engineer_name,
		COALESCE(v.problem_type, '') AS problem_type,
		COALESCE(v.engineer_comments, '') AS engineer_comments,
		COALESCE(v.address, '') AS address,
		COALESCE(v.extra_reason, '') AS extra_reason,
		v.report_document_id,
		v.created_at,
		v.updated_at
	FROM visits v
`

func (row visitRow) toModel() model.Visit {
	return model.Visit{
		ID:               row.ID,
		Reference:        row.Reference,
		ContractID:       row.ContractID,
		ClientID:         row.ClientID,
		FolderID:         row.FolderID,
		VisitMonth:       model.MonthOf(row.VisitMonth),
		SequenceNo:       row.SequenceNo,
		VisitDate:        row.VisitDate,
		State:            model.VisitState(row.State),
		Kind:             model.VisitKind(row.Kind),
		EngineerName:     row.EngineerName,
		ProblemType:      row.ProblemType,
		EngineerComments: row.EngineerComments,
		Address:          row.Address,
		ExtraReason:      row.ExtraReason,
		ReportDocumentID: row.ReportDocumentID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func (r *VisitRepository) GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	var row visitRow
	err := r.db.WithContext(ctx).Raw(visitSelect+` WHERE v.id = ?`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	visit := row.toModel()
	return &visit, nil
}

// ListForContractMonth returns the non-cancelled visits of one contract
// month ordered by sequence number. Cancelled visits are excluded so a
// cancelled slot is regenerated by the next run.
func (r *VisitRepository) ListForContractMonth(ctx context.Context, contractID uuid.UUID, month model.Month) ([]model.Visit, error) {
	return r.list(ctx, visitSelect+`
		WHERE v.contract_id = ?
			AND v.visit_month = ?
			AND v.state <> 'CANCELLED'
		ORDER BY v.sequence_no ASC
	`, contractID, month.First())
}

func (r *VisitRepository) ListForContractRange(ctx context.Context, contractID uuid.UUID, from, to model.Month) ([]model.Visit, error) {
	return r.list(ctx, visitSelect+`
		WHERE v.contract_id = ?
			AND v.visit_month >= ?
			AND v.visit_month <= ?
		ORDER BY v.visit_month ASC, v.sequence_no ASC
	`, contractID, from.First(), to.First())
}

func (r *VisitRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Visit, error) {
	return r.list(ctx, visitSelect+`
		WHERE v.contract_id = ?
		ORDER BY v.visit_month ASC, v.sequence_no ASC
	`, contractID)
}

func (r *VisitRepository) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM visits WHERE contract_id = ?
	`, contractID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VisitRepository) list(ctx context.Context, query string, args ...interface{}) ([]model.Visit, error) {
	var rows []visitRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	visits := make([]model.Visit, 0, len(rows))
	for _, row := range rows {
		visits = append(visits, row.toModel())
	}
	return visits, nil
}

// CreateVisits inserts the given visits in one transaction, assigning
// each a sequence-backed reference. References are allocated inside the
// transaction so an aborted batch leaves gaps, never duplicates.
func (r *VisitRepository) CreateVisits(ctx context.Context, visits []model.Visit) ([]model.Visit, error) {
	if len(visits) == 0 {
		return nil, nil
	}

	saved := make([]model.Visit, 0, len(visits))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, visit := range visits {
			var refNo int64
			if err := tx.Raw(`SELECT nextval('visit_reference_seq')`).Scan(&refNo).Error; err != nil {
				return err
			}
			reference := fmt.Sprintf("%s/%05d", r.refPrefix, refNo)

			var row visitRow
			err := tx.Raw(`
				INSERT INTO visits (
					reference,
					contract_id,
					client_id,
					folder_id,
					visit_month,
					sequence_no,
					visit_date,
					state,
					kind,
					engineer_name,
					problem_type,
					engineer_comments,
					address,
					extra_reason
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				RETURNING
					id,
					reference,
					contract_id,
					client_id,
					folder_id,
					visit_month,
					sequence_no,
					visit_date,
					state,
					kind,
					COALESCE(engineer_name, '') AS engineer_name,
					COALESCE(problem_type, '') AS problem_type,
					COALESCE(engineer_comments, '') AS engineer_comments,
					COALESCE(address, '') AS address,
					COALESCE(extra_reason, '') AS extra_reason,
					report_document_id,
					created_at,
					updated_at
			`,
				reference,
				visit.ContractID,
				visit.ClientID,
				visit.FolderID,
				visit.VisitMonth.First(),
				visit.SequenceNo,
				visit.VisitDate,
				string(visit.State),
				string(visit.Kind),
				visit.EngineerName,
				visit.ProblemType,
				visit.EngineerComments,
				visit.Address,
				visit.ExtraReason,
			).Scan(&row).Error
			if err != nil {
				return err
			}
			saved = append(saved, row.toModel())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// VisitUpdate carries the engineer-editable fields; nil means unchanged.
type VisitUpdate struct {
	EngineerName     *string
	ProblemType      *string
	EngineerComments *string
	Address          *string
	VisitDate        *time.Time
}

func (r *VisitRepository) UpdateVisitFields(ctx context.Context, id uuid.UUID, update VisitUpdate) (*model.Visit, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	if update.EngineerName != nil {
		sets = append(sets, "engineer_name = ?")
		args = append(args, *update.EngineerName)
	}
	if update.ProblemType != nil {
		sets = append(sets, "problem_type = ?")
		args = append(args, *update.ProblemType)
	}
	if update.EngineerComments != nil {
		sets = append(sets, "engineer_comments = ?")
		args = append(args, *update.EngineerComments)
	}
	if update.Address != nil {
		sets = append(sets, "address = ?")
		args = append(args, *update.Address)
	}
	if update.VisitDate != nil {
		sets = append(sets, "visit_date = ?")
		args = append(args, *update.VisitDate)
	}
	args = append(args, id)

	result := r.db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE visits SET %s WHERE id = ?`, strings.Join(sets, ", ")),
		args...,
	)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetVisit(ctx, id)
}

func (r *VisitRepository) UpdateVisitState(ctx context.Context, id uuid.UUID, state model.VisitState) (*model.Visit, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE visits SET state = ?, updated_at = NOW() WHERE id = ?
	`, string(state), id)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetVisit(ctx, id)
}

func (r *VisitRepository) SetReportDocument(ctx context.Context, id, documentID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE visits SET report_document_id = ?, updated_at = NOW() WHERE id = ?
	`, documentID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
