package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
	"github.com/fieldops/visits-service/internal/repository"
)

type VisitService struct {
	visits    VisitStore
	clients   ClientStore
	contracts ContractStore
	folders   FolderStore
	documents DocumentStore
	reports   ReportFiler
	log       zerolog.Logger
}

func NewVisitService(
	visits VisitStore,
	clients ClientStore,
	contracts ContractStore,
	folders FolderStore,
	documents DocumentStore,
	reports ReportFiler,
	log zerolog.Logger,
) *VisitService {
	return &VisitService{
		visits:    visits,
		clients:   clients,
		contracts: contracts,
		folders:   folders,
		documents: documents,
		reports:   reports,
		log:       log,
	}
}

type CreateAdHocVisitInput struct {
	ClientID     uuid.UUID
	VisitDate    time.Time
	ProblemType  string
	EngineerName string
}

// CreateAdHocVisit records a visit for a client without a contract. It
// is filed under the shared non-contracted root, in a month folder
// created on demand.
func (s *VisitService) CreateAdHocVisit(ctx context.Context, input CreateAdHocVisitInput) (*model.Visit, error) {
	client, err := s.clients.GetClient(ctx, input.ClientID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: client not found", ErrInvalidInput)
		}
		return nil, err
	}

	visitDate := input.VisitDate
	if visitDate.IsZero() {
		visitDate = time.Now().UTC()
	}
	month := model.MonthOf(visitDate)

	root, err := s.folders.NonContractedRoot(ctx)
	if err != nil {
		return nil, err
	}
	folder, err := s.folders.EnsureMonthFolder(ctx, root.ID, month)
	if err != nil {
		return nil, err
	}

	created, err := s.visits.CreateVisits(ctx, []model.Visit{{
		ClientID:     client.ID,
		FolderID:     &folder.ID,
		VisitMonth:   month,
		SequenceNo:   1,
		VisitDate:    visitDate,
		State:        model.VisitStatePending,
		Kind:         model.VisitKindScheduled,
		EngineerName: input.EngineerName,
		ProblemType:  input.ProblemType,
		Address:      client.Address,
	}})
	if err != nil {
		return nil, err
	}
	visit := created[0]

	if _, err := s.reports.FileVisitReport(ctx, visit); err != nil {
		s.log.Warn().Err(err).Str("visit", visit.Reference).Msg("report rendering failed, visit kept")
	}
	return s.getVisit(ctx, visit.ID)
}

func (s *VisitService) GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	return s.getVisit(ctx, id)
}

func (s *VisitService) ListContractVisits(ctx context.Context, contractID uuid.UUID) ([]model.Visit, error) {
	if _, err := s.contracts.GetContract(ctx, contractID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.visits.ListByContract(ctx, contractID)
}

func (s *VisitService) UpdateVisit(ctx context.Context, id uuid.UUID, update repository.VisitUpdate) (*model.Visit, error) {
	visit, err := s.getVisit(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit.State == model.VisitStateCancelled {
		return nil, fmt.Errorf("%w: cancelled visits cannot be edited", ErrInvalidState)
	}
	return s.visits.UpdateVisitFields(ctx, id, update)
}

func (s *VisitService) MarkDone(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	visit, err := s.getVisit(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit.State == model.VisitStateCancelled {
		return nil, fmt.Errorf("%w: cancelled visits cannot be completed", ErrInvalidState)
	}
	if visit.State == model.VisitStateDone {
		return visit, nil
	}
	return s.visits.UpdateVisitState(ctx, id, model.VisitStateDone)
}

// Cancel never deletes; the sequence slot is freed for regeneration by
// the partial unique index excluding cancelled rows.
func (s *VisitService) Cancel(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	visit, err := s.getVisit(ctx, id)
	if err != nil {
		return nil, err
	}
	if visit.State == model.VisitStateCancelled {
		return visit, nil
	}
	return s.visits.UpdateVisitState(ctx, id, model.VisitStateCancelled)
}

type SignatureInput struct {
	VisitID  uuid.UUID
	FileName string
	Content  []byte
}

// CompleteSignature is the callback for the external e-sign collaborator:
// it stores the signed artifact next to the visit's report and marks the
// visit done.
func (s *VisitService) CompleteSignature(ctx context.Context, input SignatureInput) (*model.Visit, error) {
	visit, err := s.getVisit(ctx, input.VisitID)
	if err != nil {
		return nil, err
	}
	if visit.State == model.VisitStateCancelled {
		return nil, fmt.Errorf("%w: cancelled visits cannot be signed", ErrInvalidState)
	}
	if len(input.Content) == 0 {
		return nil, fmt.Errorf("%w: signed document is empty", ErrInvalidInput)
	}
	if visit.FolderID == nil {
		return nil, fmt.Errorf("%w: visit %s has no folder", ErrInvalidState, visit.Reference)
	}

	name := strings.TrimSpace(input.FileName)
	if name == "" {
		name = fmt.Sprintf("Signed - %s.pdf", visit.Reference)
	}
	if _, err := s.documents.CreateDocument(ctx, model.Document{
		Name:     name,
		FolderID: *visit.FolderID,
		VisitID:  &visit.ID,
		MimeType: "application/pdf",
		Content:  input.Content,
	}); err != nil {
		return nil, err
	}

	if visit.State == model.VisitStateDone {
		return visit, nil
	}
	return s.visits.UpdateVisitState(ctx, input.VisitID, model.VisitStateDone)
}

// GetReport returns the visit's report document, rendering and filing it
// on demand when missing.
func (s *VisitService) GetReport(ctx context.Context, visitID uuid.UUID) (*model.Document, error) {
	visit, err := s.getVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if visit.ReportDocumentID != nil {
		doc, err := s.documents.GetDocument(ctx, *visit.ReportDocumentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return doc, nil
	}
	return s.reports.FileVisitReport(ctx, *visit)
}

func (s *VisitService) getVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	visit, err := s.visits.GetVisit(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return visit, nil
}
