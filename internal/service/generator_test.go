package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/visits-service/internal/model"
)

func month(year int, m time.Month) model.Month {
	return model.Month{Year: year, Month: m}
}

func activeContract() *model.Contract {
	rootID := uuid.New()
	return &model.Contract{
		ID:             uuid.New(),
		ClientID:       uuid.New(),
		Name:           "Acme maintenance",
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		VisitsPerMonth: 8,
		State:          model.ContractStateInProgress,
		RootFolderID:   &rootID,
		Client:         model.Client{Name: "Acme", Address: "12 Main St"},
	}
}

func scheduledVisits(contract *model.Contract, m model.Month, count int) []model.Visit {
	visits := make([]model.Visit, 0, count)
	for i := 1; i <= count; i++ {
		visits = append(visits, model.Visit{
			ID:         uuid.New(),
			ContractID: &contract.ID,
			ClientID:   contract.ClientID,
			VisitMonth: m,
			SequenceNo: i,
			State:      model.VisitStatePending,
			Kind:       model.VisitKindScheduled,
		})
	}
	return visits
}

func newTestGenerator(contracts *MockContractStore, visits *MockVisitStore, folders *MockFolderStore, reports *MockReportFiler) *Generator {
	return NewGenerator(contracts, visits, folders, reports, zerolog.Nop())
}

func TestGenerateCreatesFullQuota(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	target := month(2025, time.February)
	folder := &model.Folder{ID: uuid.New()}

	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)
	visits.On("ListForContractMonth", mock.Anything, contract.ID, target).Return([]model.Visit{}, nil)
	folders.On("EnsureMonthFolder", mock.Anything, *contract.RootFolderID, target).Return(folder, nil)
	visits.On("CreateVisits", mock.Anything, mock.MatchedBy(func(batch []model.Visit) bool {
		if len(batch) != 8 {
			return false
		}
		for i, visit := range batch {
			if visit.SequenceNo != i+1 ||
				visit.State != model.VisitStatePending ||
				visit.Kind != model.VisitKindScheduled ||
				visit.VisitMonth != target {
				return false
			}
		}
		return true
	})).Return(scheduledVisits(contract, target, 8), nil)
	reports.On("FileVisitReport", mock.Anything, mock.Anything).Return(&model.Document{ID: uuid.New()}, nil)

	generator := newTestGenerator(contracts, visits, folders, reports)
	created, err := generator.Generate(context.Background(), contract.ID, target)

	require.NoError(t, err)
	assert.Len(t, created, 8)
	visits.AssertExpectations(t)
	reports.AssertNumberOfCalls(t, "FileVisitReport", 8)
}

func TestGenerateIsIdempotentWhenQuotaSatisfied(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	target := month(2025, time.February)

	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)
	visits.On("ListForContractMonth", mock.Anything, contract.ID, target).
		Return(scheduledVisits(contract, target, 8), nil)

	generator := newTestGenerator(contracts, visits, folders, reports)
	created, err := generator.Generate(context.Background(), contract.ID, target)

	require.NoError(t, err)
	assert.Empty(t, created)
	visits.AssertNotCalled(t, "CreateVisits", mock.Anything, mock.Anything)
	reports.AssertNotCalled(t, "FileVisitReport", mock.Anything, mock.Anything)
}

func TestGenerateTopsUpPartialMonth(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	target := month(2025, time.February)
	folder := &model.Folder{ID: uuid.New()}

	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)
	visits.On("ListForContractMonth", mock.Anything, contract.ID, target).
		Return(scheduledVisits(contract, target, 3), nil)
	folders.On("EnsureMonthFolder", mock.Anything, *contract.RootFolderID, target).Return(folder, nil)
	visits.On("CreateVisits", mock.Anything, mock.MatchedBy(func(batch []model.Visit) bool {
		if len(batch) != 5 {
			return false
		}
		for i, visit := range batch {
			if visit.SequenceNo != 4+i {
				return false
			}
		}
		return true
	})).Return(scheduledVisits(contract, target, 5), nil)
	reports.On("FileVisitReport", mock.Anything, mock.Anything).Return(&model.Document{ID: uuid.New()}, nil)

	generator := newTestGenerator(contracts, visits, folders, reports)
	created, err := generator.Generate(context.Background(), contract.ID, target)

	require.NoError(t, err)
	assert.Len(t, created, 5)
	visits.AssertExpectations(t)
}

func TestGenerateExtrasBeyondQuotaAreNotTrimmed(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	target := month(2025, time.February)

	// 10 non-cancelled visits for a quota of 8: already over-satisfied.
	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)
	visits.On("ListForContractMonth", mock.Anything, contract.ID, target).
		Return(scheduledVisits(contract, target, 10), nil)

	generator := newTestGenerator(contracts, visits, folders, reports)
	created, err := generator.Generate(context.Background(), contract.ID, target)

	require.NoError(t, err)
	assert.Empty(t, created)
	visits.AssertNotCalled(t, "CreateVisits", mock.Anything, mock.Anything)
}

func TestGenerateOutOfRangeIsSilentNoOp(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)

	generator := newTestGenerator(contracts, visits, folders, reports)

	for _, target := range []model.Month{month(2024, time.December), month(2025, time.April)} {
		created, err := generator.Generate(context.Background(), contract.ID, target)
		require.NoError(t, err)
		assert.Empty(t, created)
	}
	visits.AssertNotCalled(t, "ListForContractMonth", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateRejectsContractNotInProgress(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	contract.State = model.ContractStateDraft
	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)

	generator := newTestGenerator(contracts, visits, folders, reports)
	_, err := generator.Generate(context.Background(), contract.ID, month(2025, time.February))

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGenerateKeepsVisitsWhenReportRenderingFails(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	target := month(2025, time.March)
	folder := &model.Folder{ID: uuid.New()}

	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)
	visits.On("ListForContractMonth", mock.Anything, contract.ID, target).Return([]model.Visit{}, nil)
	folders.On("EnsureMonthFolder", mock.Anything, *contract.RootFolderID, target).Return(folder, nil)
	visits.On("CreateVisits", mock.Anything, mock.Anything).Return(scheduledVisits(contract, target, 8), nil)
	reports.On("FileVisitReport", mock.Anything, mock.Anything).Return(nil, errors.New("renderer down"))

	generator := newTestGenerator(contracts, visits, folders, reports)
	created, err := generator.Generate(context.Background(), contract.ID, target)

	require.NoError(t, err)
	assert.Len(t, created, 8)
}

func TestAddExtraAlwaysCreatesRequestedCount(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	target := month(2025, time.February)
	folder := &model.Folder{ID: uuid.New()}

	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)
	// Quota already satisfied; extras ignore the deficit check.
	visits.On("ListForContractMonth", mock.Anything, contract.ID, target).
		Return(scheduledVisits(contract, target, 8), nil)
	folders.On("EnsureMonthFolder", mock.Anything, *contract.RootFolderID, target).Return(folder, nil)
	visits.On("CreateVisits", mock.Anything, mock.MatchedBy(func(batch []model.Visit) bool {
		if len(batch) != 3 {
			return false
		}
		for i, visit := range batch {
			if visit.Kind != model.VisitKindExtra ||
				visit.ExtraReason != "client request" ||
				visit.SequenceNo != 9+i {
				return false
			}
		}
		return true
	})).Return(scheduledVisits(contract, target, 3), nil)
	reports.On("FileVisitReport", mock.Anything, mock.Anything).Return(&model.Document{ID: uuid.New()}, nil)

	generator := newTestGenerator(contracts, visits, folders, reports)
	created, err := generator.AddExtra(context.Background(), AddExtraInput{
		ContractID: contract.ID,
		Month:      target,
		Count:      3,
		Reason:     "client request",
	})

	require.NoError(t, err)
	assert.Len(t, created, 3)
	visits.AssertExpectations(t)
}

func TestAddExtraValidation(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	contract := activeContract()
	contracts.On("GetContract", mock.Anything, contract.ID).Return(contract, nil)

	generator := newTestGenerator(contracts, visits, folders, reports)

	_, err := generator.AddExtra(context.Background(), AddExtraInput{
		ContractID: contract.ID, Month: month(2025, time.February), Count: 0, Reason: "x",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = generator.AddExtra(context.Background(), AddExtraInput{
		ContractID: contract.ID, Month: month(2025, time.February), Count: 2, Reason: "  ",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = generator.AddExtra(context.Background(), AddExtraInput{
		ContractID: contract.ID, Month: month(2025, time.June), Count: 2, Reason: "client request",
	})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestGenerateForAllActiveSweep(t *testing.T) {
	contracts := new(MockContractStore)
	visits := new(MockVisitStore)
	folders := new(MockFolderStore)
	reports := new(MockReportFiler)

	asOf := time.Date(2025, 2, 15, 3, 0, 0, 0, time.UTC)
	current := month(2025, time.February)

	healthy := activeContract()
	broken := activeContract()
	folder := &model.Folder{ID: uuid.New()}

	contracts.On("CloseEndedContracts", mock.Anything, current).Return(int64(2), nil)
	contracts.On("ListContractsByState", mock.Anything, model.ContractStateInProgress).
		Return([]model.Contract{*healthy, *broken}, nil)

	visits.On("ListForContractMonth", mock.Anything, healthy.ID, current).Return([]model.Visit{}, nil)
	folders.On("EnsureMonthFolder", mock.Anything, *healthy.RootFolderID, current).Return(folder, nil)
	visits.On("CreateVisits", mock.Anything, mock.MatchedBy(func(batch []model.Visit) bool {
		return len(batch) == 8 && *batch[0].ContractID == healthy.ID
	})).Return(scheduledVisits(healthy, current, 8), nil)
	reports.On("FileVisitReport", mock.Anything, mock.Anything).Return(&model.Document{ID: uuid.New()}, nil)

	// The second contract fails; the sweep must carry on regardless.
	visits.On("ListForContractMonth", mock.Anything, broken.ID, current).
		Return(nil, errors.New("connection reset"))

	generator := newTestGenerator(contracts, visits, folders, reports)
	result, err := generator.GenerateForAllActive(context.Background(), asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, result.ContractsSwept)
	assert.Equal(t, 8, result.VisitsCreated)
	assert.Equal(t, int64(2), result.ContractsClosed)
}
