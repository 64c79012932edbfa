package model

import (
	"time"

	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// Investigation represents a case opened against a source message
type Investigation struct {
	ID              types.InvestigationID
	ReferenceNumber string // INV-YYYYMMDD-XXXX, assigned exactly once
	MessageID       types.MessageID
	Status          types.InvestigationStatus
	Priority        types.Priority
	CustomerInfo    map[string]any
	ResolutionNotes string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ResolvedAt      *time.Time
}

// ActionCounts summarizes action progress for a listed investigation
type ActionCounts struct {
	Total     int
	Pending   int
	Completed int
}

// InvestigationSummary is a list-view projection of an investigation
type InvestigationSummary struct {
	ID              types.InvestigationID
	ReferenceNumber string
	Status          types.InvestigationStatus
	Priority        types.Priority
	WireID          string
	CustomerName    string
	ActionCounts    ActionCounts
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DaysOpen        int
}

// InvestigationPage is one page of investigation summaries.
// Total counts all matches before pagination is applied.
type InvestigationPage struct {
	Total  int
	Items  []*InvestigationSummary
	Limit  int
	Offset int
}

// InvestigationDetail bundles an investigation with its source message and actions
type InvestigationDetail struct {
	Investigation *Investigation
	Message       *Message
	Actions       []*Action
}

// Analytics aggregates investigation metrics across the whole store
type Analytics struct {
	StatusCounts        map[types.InvestigationStatus]int
	PriorityCounts      map[types.Priority]int
	AvgResolutionHours  float64
	TotalInvestigations int
	ActionTypeCounts    map[string]int
	GeneratedAt         time.Time
}

// Notification is generated correspondence about an investigation
type Notification struct {
	Subject          string
	Body             string
	InvestigationID  types.InvestigationID
	ReferenceNumber  string
	NotificationType string
	GeneratedAt      time.Time
}
