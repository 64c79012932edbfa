package model

import (
	"time"

	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// Action represents a discrete remediation step tracked within an investigation
type Action struct {
	ID                types.ActionID
	InvestigationID   types.InvestigationID
	ActionType        string // free-form category, e.g. information_request
	Description       string
	SuggestedResponse string
	Notes             string
	Status            types.ActionStatus
	Priority          types.Priority
	Deadline          time.Time // absolute timestamp, not a duration
	CompletedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SuggestedAction is a classifier proposal from which an Action is derived
type SuggestedAction struct {
	Type              string
	Description       string
	SuggestedResponse string
	Priority          types.Priority
	Days              int // deadline offset in days, default 3
}

// DeadlineDays returns the deadline offset, clamped to the 1-10 day range
// the classifier is instructed to use. Zero or negative means unspecified.
func (s SuggestedAction) DeadlineDays() int {
	switch {
	case s.Days <= 0:
		return 3
	case s.Days > 10:
		return 10
	default:
		return s.Days
	}
}
