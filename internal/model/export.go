package model

// ScheduleExport feeds the Excel generator: one block per month of the
// requested range, months without visits included.
type ScheduleExport struct {
	Contract    Contract
	From        Month
	To          Month
	Months      []MonthSchedule
	TotalVisits int
}

type MonthSchedule struct {
	Month  Month
	Visits []Visit
}
