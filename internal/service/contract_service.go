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
)

type ContractService struct {
	contracts ContractStore
	clients   ClientStore
	visits    VisitStore
	folders   FolderStore
	generator *Generator
	log       zerolog.Logger
}

func NewContractService(
	contracts ContractStore,
	clients ClientStore,
	visits VisitStore,
	folders FolderStore,
	generator *Generator,
	log zerolog.Logger,
) *ContractService {
	return &ContractService{
		contracts: contracts,
		clients:   clients,
		visits:    visits,
		folders:   folders,
		generator: generator,
		log:       log,
	}
}

type CreateContractInput struct {
	ClientID       uuid.UUID
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	VisitsPerMonth int
}

func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidInput)
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end_date must not precede start_date", ErrInvalidInput)
	}
	if input.VisitsPerMonth <= 0 {
		return nil, fmt.Errorf("%w: visits_per_month must be positive", ErrInvalidInput)
	}

	if _, err := s.clients.GetClient(ctx, input.ClientID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: client not found", ErrInvalidInput)
		}
		return nil, err
	}

	return s.contracts.CreateContract(ctx, model.Contract{
		ClientID:       input.ClientID,
		Name:           strings.TrimSpace(input.Name),
		StartDate:      dateOnly(input.StartDate),
		EndDate:        dateOnly(input.EndDate),
		VisitsPerMonth: input.VisitsPerMonth,
	})
}

type ActivationResult struct {
	Contract      *model.Contract
	VisitsCreated int
}

// Activate moves a draft contract to in-progress: builds the folder
// tree spanning every month of the contract, then generates the current
// month's visits immediately when today falls inside the span.
func (s *ContractService) Activate(ctx context.Context, id uuid.UUID, now time.Time) (*ActivationResult, error) {
	contract, err := s.getContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.State != model.ContractStateDraft {
		return nil, fmt.Errorf("%w: contract must be draft to activate, is %s", ErrInvalidState, contract.State)
	}

	if contract.RootFolderID == nil {
		months := model.MonthsBetween(contract.StartDate, contract.EndDate)
		root, err := s.folders.CreateContractFolders(ctx, contract.Client.Name, contract.ClientID, months)
		if err != nil {
			return nil, err
		}
		if err := s.contracts.SetRootFolder(ctx, contract.ID, root.ID); err != nil {
			return nil, err
		}
	}

	if err := s.contracts.UpdateContractState(ctx, contract.ID, model.ContractStateInProgress); err != nil {
		return nil, err
	}

	created := 0
	if contract.ContainsMonth(model.MonthOf(now)) {
		visits, err := s.generator.Generate(ctx, contract.ID, model.MonthOf(now))
		if err != nil {
			return nil, err
		}
		created = len(visits)
	}

	updated, err := s.getContract(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("contract", updated.Name).
		Int("visits_created", created).
		Msg("contract activated")
	return &ActivationResult{Contract: updated, VisitsCreated: created}, nil
}

func (s *ContractService) Close(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.getContract(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.State != model.ContractStateInProgress {
		return nil, fmt.Errorf("%w: contract must be in progress to close, is %s", ErrInvalidState, contract.State)
	}
	if err := s.contracts.UpdateContractState(ctx, id, model.ContractStateClosed); err != nil {
		return nil, err
	}
	return s.getContract(ctx, id)
}

type ContractSummary struct {
	Contract       model.Contract
	GeneratedCount int64
	ExpectedTotal  int
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*ContractSummary, error) {
	contract, err := s.getContract(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.visits.CountByContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ContractSummary{
		Contract:       *contract,
		GeneratedCount: count,
		ExpectedTotal:  contract.TotalExpectedVisits(),
	}, nil
}

func (s *ContractService) ListContracts(ctx context.Context) ([]model.Contract, error) {
	return s.contracts.ListContracts(ctx)
}

func (s *ContractService) getContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
