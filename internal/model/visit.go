package model

import (
	"time"

	"github.com/google/uuid"
)

type VisitState string

const (
	VisitStatePending   VisitState = "PENDING"
	VisitStateDone      VisitState = "DONE"
	VisitStateCancelled VisitState = "CANCELLED"
)

type VisitKind string

const (
	VisitKindScheduled VisitKind = "SCHEDULED"
	VisitKindExtra     VisitKind = "EXTRA"
)

type Visit struct {
	ID               uuid.UUID
	Reference        string
	ContractID       *uuid.UUID // nil for non-contracted visits
	ClientID         uuid.UUID
	FolderID         *uuid.UUID
	VisitMonth       Month
	SequenceNo       int
	VisitDate        time.Time
	State            VisitState
	Kind             VisitKind
	EngineerName     string
	ProblemType      string
	EngineerComments string
	Address          string
	ExtraReason      string
	ReportDocumentID *uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// VisitReport carries everything the PDF renderer needs for one visit.
type VisitReport struct {
	Visit    Visit
	Client   Client
	Contract *Contract // nil for non-contracted visits
}
