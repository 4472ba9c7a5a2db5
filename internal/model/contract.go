package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractState string

const (
	ContractStateDraft      ContractState = "DRAFT"
	ContractStateInProgress ContractState = "IN_PROGRESS"
	ContractStateClosed     ContractState = "CLOSED"
)

type Contract struct {
	ID             uuid.UUID
	ClientID       uuid.UUID
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	VisitsPerMonth int
	State          ContractState
	RootFolderID   *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Client         Client
}

// StartMonth and EndMonth bound the generation window; partial first and
// last months count as whole months.
func (c Contract) StartMonth() Month {
	return MonthOf(c.StartDate)
}

func (c Contract) EndMonth() Month {
	return MonthOf(c.EndDate)
}

// ContainsMonth reports whether the month falls inside the contract span.
func (c Contract) ContainsMonth(m Month) bool {
	return !m.Before(c.StartMonth()) && !m.After(c.EndMonth())
}

// TotalExpectedVisits is quota times the number of months spanned,
// counting partial months in full.
func (c Contract) TotalExpectedVisits() int {
	return len(MonthsBetween(c.StartDate, c.EndDate)) * c.VisitsPerMonth
}
