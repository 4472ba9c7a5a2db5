package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops/visits-service/internal/model"
	"github.com/fieldops/visits-service/internal/repository"
)

type ClientStore interface {
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	CreateClient(ctx context.Context, client model.Client) (*model.Client, error)
	ListClients(ctx context.Context) ([]model.Client, error)
}

type ContractStore interface {
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	CreateContract(ctx context.Context, contract model.Contract) (*model.Contract, error)
	ListContracts(ctx context.Context) ([]model.Contract, error)
	ListContractsByState(ctx context.Context, state model.ContractState) ([]model.Contract, error)
	UpdateContractState(ctx context.Context, id uuid.UUID, state model.ContractState) error
	SetRootFolder(ctx context.Context, id, folderID uuid.UUID) error
	CloseEndedContracts(ctx context.Context, before model.Month) (int64, error)
}

type VisitStore interface {
	GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error)
	ListForContractMonth(ctx context.Context, contractID uuid.UUID, month model.Month) ([]model.Visit, error)
	ListForContractRange(ctx context.Context, contractID uuid.UUID, from, to model.Month) ([]model.Visit, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Visit, error)
	CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error)
	CreateVisits(ctx context.Context, visits []model.Visit) ([]model.Visit, error)
	UpdateVisitFields(ctx context.Context, id uuid.UUID, update repository.VisitUpdate) (*model.Visit, error)
	UpdateVisitState(ctx context.Context, id uuid.UUID, state model.VisitState) (*model.Visit, error)
	SetReportDocument(ctx context.Context, id, documentID uuid.UUID) error
}

type FolderStore interface {
	CreateContractFolders(ctx context.Context, name string, clientID uuid.UUID, months []model.Month) (*model.Folder, error)
	GetFolder(ctx context.Context, id uuid.UUID) (*model.Folder, error)
	ListRootFolders(ctx context.Context) ([]model.Folder, error)
	ListChildFolders(ctx context.Context, parentID uuid.UUID) ([]model.Folder, error)
	FindMonthFolder(ctx context.Context, parentID uuid.UUID, month model.Month) (*model.Folder, error)
	EnsureMonthFolder(ctx context.Context, parentID uuid.UUID, month model.Month) (*model.Folder, error)
	NonContractedRoot(ctx context.Context) (*model.Folder, error)
}

type DocumentStore interface {
	CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error)
	ListFolderDocuments(ctx context.Context, folderID uuid.UUID) ([]model.Document, error)
}

// ReportRenderer turns one visit into its PDF report bytes.
type ReportRenderer interface {
	Render(report model.VisitReport) ([]byte, error)
}

// ReportFiler renders a visit report and stores it as a document in the
// visit's folder. The generator calls it fire-and-forget: a rendering
// failure never rolls back the visit itself.
type ReportFiler interface {
	FileVisitReport(ctx context.Context, visit model.Visit) (*model.Document, error)
}
