package service

import (
	"context"
	"fmt"

	"github.com/fieldops/visits-service/internal/model"
)

// ReportService renders visit reports and files them in the visit's
// month folder.
type ReportService struct {
	clients   ClientStore
	contracts ContractStore
	visits    VisitStore
	documents DocumentStore
	renderer  ReportRenderer
}

func NewReportService(
	clients ClientStore,
	contracts ContractStore,
	visits VisitStore,
	documents DocumentStore,
	renderer ReportRenderer,
) *ReportService {
	return &ReportService{
		clients:   clients,
		contracts: contracts,
		visits:    visits,
		documents: documents,
		renderer:  renderer,
	}
}

// FileVisitReport is idempotent: an already-filed report is returned as
// is rather than rendered again.
func (s *ReportService) FileVisitReport(ctx context.Context, visit model.Visit) (*model.Document, error) {
	if visit.ReportDocumentID != nil {
		return s.documents.GetDocument(ctx, *visit.ReportDocumentID)
	}
	if visit.FolderID == nil {
		return nil, fmt.Errorf("%w: visit %s has no folder", ErrInvalidState, visit.Reference)
	}

	client, err := s.clients.GetClient(ctx, visit.ClientID)
	if err != nil {
		return nil, err
	}

	report := model.VisitReport{
		Visit:  visit,
		Client: *client,
	}
	if visit.ContractID != nil {
		contract, err := s.contracts.GetContract(ctx, *visit.ContractID)
		if err != nil {
			return nil, err
		}
		report.Contract = contract
	}

	content, err := s.renderer.Render(report)
	if err != nil {
		return nil, fmt.Errorf("render report for %s: %w", visit.Reference, err)
	}

	doc, err := s.documents.CreateDocument(ctx, model.Document{
		Name:     fmt.Sprintf("Visit Report - %s.pdf", visit.Reference),
		FolderID: *visit.FolderID,
		VisitID:  &visit.ID,
		MimeType: "application/pdf",
		Content:  content,
	})
	if err != nil {
		return nil, err
	}

	if err := s.visits.SetReportDocument(ctx, visit.ID, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}
