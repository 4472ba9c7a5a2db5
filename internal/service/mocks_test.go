package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fieldops/visits-service/internal/model"
	"github.com/fieldops/visits-service/internal/repository"
)

type MockContractStore struct {
	mock.Mock
}

func (m *MockContractStore) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contract), args.Error(1)
}

func (m *MockContractStore) CreateContract(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	args := m.Called(ctx, contract)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contract), args.Error(1)
}

func (m *MockContractStore) ListContracts(ctx context.Context) ([]model.Contract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contract), args.Error(1)
}

func (m *MockContractStore) ListContractsByState(ctx context.Context, state model.ContractState) ([]model.Contract, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contract), args.Error(1)
}

func (m *MockContractStore) UpdateContractState(ctx context.Context, id uuid.UUID, state model.ContractState) error {
	args := m.Called(ctx, id, state)
	return args.Error(0)
}

func (m *MockContractStore) SetRootFolder(ctx context.Context, id, folderID uuid.UUID) error {
	args := m.Called(ctx, id, folderID)
	return args.Error(0)
}

func (m *MockContractStore) CloseEndedContracts(ctx context.Context, before model.Month) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockVisitStore struct {
	mock.Mock
}

func (m *MockVisitStore) GetVisit(ctx context.Context, id uuid.UUID) (*model.Visit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Visit), args.Error(1)
}

func (m *MockVisitStore) ListForContractMonth(ctx context.Context, contractID uuid.UUID, month model.Month) ([]model.Visit, error) {
	args := m.Called(ctx, contractID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Visit), args.Error(1)
}

func (m *MockVisitStore) ListForContractRange(ctx context.Context, contractID uuid.UUID, from, to model.Month) ([]model.Visit, error) {
	args := m.Called(ctx, contractID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Visit), args.Error(1)
}

func (m *MockVisitStore) ListByContract(ctx context.Context, contractID uuid.UUID) ([]model.Visit, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Visit), args.Error(1)
}

func (m *MockVisitStore) CountByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVisitStore) CreateVisits(ctx context.Context, visits []model.Visit) ([]model.Visit, error) {
	args := m.Called(ctx, visits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Visit), args.Error(1)
}

func (m *MockVisitStore) UpdateVisitFields(ctx context.Context, id uuid.UUID, update repository.VisitUpdate) (*model.Visit, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Visit), args.Error(1)
}

func (m *MockVisitStore) UpdateVisitState(ctx context.Context, id uuid.UUID, state model.VisitState) (*model.Visit, error) {
	args := m.Called(ctx, id, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Visit), args.Error(1)
}

func (m *MockVisitStore) SetReportDocument(ctx context.Context, id, documentID uuid.UUID) error {
	args := m.Called(ctx, id, documentID)
	return args.Error(0)
}

type MockFolderStore struct {
	mock.Mock
}

func (m *MockFolderStore) CreateContractFolders(ctx context.Context, name string, clientID uuid.UUID, months []model.Month) (*model.Folder, error) {
	args := m.Called(ctx, name, clientID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderStore) GetFolder(ctx context.Context, id uuid.UUID) (*model.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderStore) ListRootFolders(ctx context.Context) ([]model.Folder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderStore) ListChildFolders(ctx context.Context, parentID uuid.UUID) ([]model.Folder, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderStore) FindMonthFolder(ctx context.Context, parentID uuid.UUID, month model.Month) (*model.Folder, error) {
	args := m.Called(ctx, parentID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderStore) EnsureMonthFolder(ctx context.Context, parentID uuid.UUID, month model.Month) (*model.Folder, error) {
	args := m.Called(ctx, parentID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderStore) NonContractedRoot(ctx context.Context) (*model.Folder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentStore) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentStore) ListFolderDocuments(ctx context.Context, folderID uuid.UUID) ([]model.Document, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

type MockClientStore struct {
	mock.Mock
}

func (m *MockClientStore) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockClientStore) CreateClient(ctx context.Context, client model.Client) (*model.Client, error) {
	args := m.Called(ctx, client)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Client), args.Error(1)
}

func (m *MockClientStore) ListClients(ctx context.Context) ([]model.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Client), args.Error(1)
}

type MockReportFiler struct {
	mock.Mock
}

func (m *MockReportFiler) FileVisitReport(ctx context.Context, visit model.Visit) (*model.Document, error) {
	args := m.Called(ctx, visit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

type MockExcelGenerator struct {
	mock.Mock
}

func (m *MockExcelGenerator) Generate(export model.ScheduleExport) ([]byte, error) {
	args := m.Called(export)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockReportRenderer struct {
	mock.Mock
}

func (m *MockReportRenderer) Render(report model.VisitReport) ([]byte, error) {
	args := m.Called(report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
