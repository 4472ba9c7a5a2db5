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

// Generator reconciles each contract month against its visit quota,
// creating only the missing records. It holds no state between calls:
// idempotence comes entirely from re-counting persisted visits.
type Generator struct {
	contracts ContractStore
	visits    VisitStore
	folders   FolderStore
	reports   ReportFiler
	log       zerolog.Logger
}

func NewGenerator(
	contracts ContractStore,
	visits VisitStore,
	folders FolderStore,
	reports ReportFiler,
	log zerolog.Logger,
) *Generator {
	return &Generator{
		contracts: contracts,
		visits:    visits,
		folders:   folders,
		reports:   reports,
		log:       log,
	}
}

// Generate tops the target month up to the contract quota. A month
// outside the contract span is a silent no-op so the daily sweep can
// call it for every active contract without pre-filtering by date.
func (g *Generator) Generate(ctx context.Context, contractID uuid.UUID, month model.Month) ([]model.Visit, error) {
	contract, err := g.contracts.GetContract(ctx, contractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g.generateForContract(ctx, contract, month)
}

func (g *Generator) generateForContract(ctx context.Context, contract *model.Contract, month model.Month) ([]model.Visit, error) {
	if contract.State != model.ContractStateInProgress {
		return nil, fmt.Errorf("%w: contract %s is %s", ErrInvalidState, contract.Name, contract.State)
	}
	if !contract.ContainsMonth(month) {
		return nil, nil
	}

	existing, err := g.visits.ListForContractMonth(ctx, contract.ID, month)
	if err != nil {
		return nil, err
	}

	missing := contract.VisitsPerMonth - len(existing)
	if missing <= 0 {
		return nil, nil
	}

	folder, err := g.monthFolder(ctx, contract, month)
	if err != nil {
		return nil, err
	}

	nextSeq := 1
	if len(existing) > 0 {
		nextSeq = existing[len(existing)-1].SequenceNo + 1
	}

	toCreate := make([]model.Visit, 0, missing)
	for i := 0; i < missing; i++ {
		toCreate = append(toCreate, model.Visit{
			ContractID: &contract.ID,
			ClientID:   contract.ClientID,
			FolderID:   &folder.ID,
			VisitMonth: month,
			SequenceNo: nextSeq + i,
			VisitDate:  month.First(),
			State:      model.VisitStatePending,
			Kind:       model.VisitKindScheduled,
			Address:    contract.Client.Address,
		})
	}

	created, err := g.visits.CreateVisits(ctx, toCreate)
	if err != nil {
		return nil, err
	}
	g.fileReports(ctx, created)
	return created, nil
}

type AddExtraInput struct {
	ContractID uuid.UUID
	Month      model.Month
	Count      int
	Reason     string
}

// AddExtra creates visits beyond the monthly quota. Unlike Generate it
// rejects out-of-range months, since it is always a deliberate user
// action rather than a blind sweep.
func (g *Generator) AddExtra(ctx context.Context, input AddExtraInput) ([]model.Visit, error) {
	if input.Count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}

	contract, err := g.contracts.GetContract(ctx, input.ContractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if contract.State != model.ContractStateInProgress {
		return nil, fmt.Errorf("%w: contract %s is %s", ErrInvalidState, contract.Name, contract.State)
	}
	if !contract.ContainsMonth(input.Month) {
		return nil, fmt.Errorf("%w: %s is outside %s..%s", ErrOutOfRange,
			input.Month, contract.StartMonth(), contract.EndMonth())
	}

	existing, err := g.visits.ListForContractMonth(ctx, contract.ID, input.Month)
	if err != nil {
		return nil, err
	}
	nextSeq := 1
	if len(existing) > 0 {
		nextSeq = existing[len(existing)-1].SequenceNo + 1
	}

	folder, err := g.monthFolder(ctx, contract, input.Month)
	if err != nil {
		return nil, err
	}

	toCreate := make([]model.Visit, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		toCreate = append(toCreate, model.Visit{
			ContractID:  &contract.ID,
			ClientID:    contract.ClientID,
			FolderID:    &folder.ID,
			VisitMonth:  input.Month,
			SequenceNo:  nextSeq + i,
			VisitDate:   input.Month.First(),
			State:       model.VisitStatePending,
			Kind:        model.VisitKindExtra,
			Address:     contract.Client.Address,
			ExtraReason: strings.TrimSpace(input.Reason),
		})
	}

	created, err := g.visits.CreateVisits(ctx, toCreate)
	if err != nil {
		return nil, err
	}
	g.fileReports(ctx, created)
	return created, nil
}

type SweepResult struct {
	ContractsSwept  int
	VisitsCreated   int
	ContractsClosed int64
}

// GenerateForAllActive is the daily entry point: close contracts whose
// span has ended, then top up the current month for every contract still
// in progress. Per-contract failures are logged and skipped so one bad
// contract cannot stall the sweep.
func (g *Generator) GenerateForAllActive(ctx context.Context, asOf time.Time) (SweepResult, error) {
	var result SweepResult
	current := model.MonthOf(asOf)

	closed, err := g.contracts.CloseEndedContracts(ctx, current)
	if err != nil {
		return result, err
	}
	result.ContractsClosed = closed

	contracts, err := g.contracts.ListContractsByState(ctx, model.ContractStateInProgress)
	if err != nil {
		return result, err
	}

	for i := range contracts {
		contract := contracts[i]
		result.ContractsSwept++
		created, err := g.generateForContract(ctx, &contract, current)
		if err != nil {
			g.log.Error().Err(err).
				Str("contract", contract.Name).
				Str("month", current.String()).
				Msg("visit generation failed")
			continue
		}
		result.VisitsCreated += len(created)
	}

	g.log.Info().
		Int("contracts", result.ContractsSwept).
		Int("visits_created", result.VisitsCreated).
		Int64("contracts_closed", result.ContractsClosed).
		Str("month", current.String()).
		Msg("daily visit sweep finished")
	return result, nil
}

func (g *Generator) monthFolder(ctx context.Context, contract *model.Contract, month model.Month) (*model.Folder, error) {
	if contract.RootFolderID == nil {
		return nil, fmt.Errorf("%w: contract %s has no folder tree", ErrInvalidState, contract.Name)
	}
	// Activation pre-creates the month folders; Ensure covers trees from
	// before a contract was extended.
	return g.folders.EnsureMonthFolder(ctx, *contract.RootFolderID, month)
}

func (g *Generator) fileReports(ctx context.Context, visits []model.Visit) {
	for _, visit := range visits {
		if _, err := g.reports.FileVisitReport(ctx, visit); err != nil {
			g.log.Warn().Err(err).
				Str("visit", visit.Reference).
				Msg("report rendering failed, visit kept")
		}
	}
}
