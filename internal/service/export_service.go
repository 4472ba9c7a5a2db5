package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fieldops/visits-service/internal/model"
)

type ExcelGenerator interface {
	Generate(export model.ScheduleExport) ([]byte, error)
}

type ExportService struct {
	contracts ContractStore
	visits    VisitStore
	excel     ExcelGenerator
}

func NewExportService(contracts ContractStore, visits VisitStore, excel ExcelGenerator) *ExportService {
	return &ExportService{contracts: contracts, visits: visits, excel: excel}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

// ExportSchedule builds the contract's visit schedule workbook. A zero
// from/to defaults to the contract span; the range is clipped to it.
func (s *ExportService) ExportSchedule(ctx context.Context, contractID uuid.UUID, from, to model.Month) (*ExportResult, error) {
	contract, err := s.contracts.GetContract(ctx, contractID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if from.IsZero() {
		from = contract.StartMonth()
	}
	if to.IsZero() {
		to = contract.EndMonth()
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: from must not follow to", ErrInvalidInput)
	}
	if from.Before(contract.StartMonth()) {
		from = contract.StartMonth()
	}
	if to.After(contract.EndMonth()) {
		to = contract.EndMonth()
	}

	visits, err := s.visits.ListForContractRange(ctx, contractID, from, to)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[model.Month][]model.Visit)
	for _, visit := range visits {
		byMonth[visit.VisitMonth] = append(byMonth[visit.VisitMonth], visit)
	}

	export := model.ScheduleExport{
		Contract:    *contract,
		From:        from,
		To:          to,
		TotalVisits: len(visits),
	}
	for m := from; !m.After(to); m = m.Next() {
		export.Months = append(export.Months, model.MonthSchedule{
			Month:  m,
			Visits: byMonth[m],
		})
	}

	content, err := s.excel.Generate(export)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: buildExportFileName(contract.Name, from, to),
		Content:  content,
	}, nil
}

func buildExportFileName(contractName string, from, to model.Month) string {
	name := sanitizeFileName(contractName)
	if name == "" {
		name = "contract"
	}
	return fmt.Sprintf("visits-%s-%s-%s.xlsx", name, from, to)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
