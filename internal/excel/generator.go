package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fieldops/visits-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the schedule workbook: a summary sheet plus one sheet
// per month of the exported range.
func (g *Generator) Generate(export model.ScheduleExport) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, export); err != nil {
		return nil, err
	}

	for _, month := range export.Months {
		sheetName := month.Month.String()
		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeMonth(file, sheetName, month); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, export model.ScheduleExport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Contract")
	set("B1", export.Contract.Name)
	set("A2", "Client")
	set("B2", export.Contract.Client.Name)
	set("A3", "Period from")
	set("B3", export.From.String())
	set("A4", "Period to")
	set("B4", export.To.String())
	set("A5", "Visits per month")
	set("B5", export.Contract.VisitsPerMonth)
	set("A6", "Total visits in range")
	set("B6", export.TotalVisits)

	set("A8", "Month")
	set("B8", "Scheduled")
	set("C8", "Extra")
	set("D8", "Done")
	set("E8", "Cancelled")

	row := 9
	for _, month := range export.Months {
		var scheduled, extra, done, cancelled int
		for _, visit := range month.Visits {
			if visit.Kind == model.VisitKindExtra {
				extra++
			} else {
				scheduled++
			}
			switch visit.State {
			case model.VisitStateDone:
				done++
			case model.VisitStateCancelled:
				cancelled++
			}
		}
		set(fmt.Sprintf("A%d", row), month.Month.String())
		set(fmt.Sprintf("B%d", row), scheduled)
		set(fmt.Sprintf("C%d", row), extra)
		set(fmt.Sprintf("D%d", row), done)
		set(fmt.Sprintf("E%d", row), cancelled)
		row++
	}
	return nil
}

func (g *Generator) writeMonth(file *excelize.File, sheet string, month model.MonthSchedule) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Reference")
	set("B1", "Seq")
	set("C1", "Date")
	set("D1", "Status")
	set("E1", "Type")
	set("F1", "Engineer")
	set("G1", "Problem")

	row := 2
	for _, visit := range month.Visits {
		set(fmt.Sprintf("A%d", row), visit.Reference)
		set(fmt.Sprintf("B%d", row), visit.SequenceNo)
		set(fmt.Sprintf("C%d", row), visit.VisitDate.Format("2006-01-02"))
		set(fmt.Sprintf("D%d", row), string(visit.State))
		set(fmt.Sprintf("E%d", row), string(visit.Kind))
		set(fmt.Sprintf("F%d", row), visit.EngineerName)
		set(fmt.Sprintf("G%d", row), visit.ProblemType)
		row++
	}
	if len(month.Visits) == 0 {
		set("A2", "no visits")
	}
	return nil
}
