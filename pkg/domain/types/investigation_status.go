package types

import "fmt"

// InvestigationStatus represents the lifecycle status of an investigation
type InvestigationStatus string

const (
	InvestigationStatusOpen       InvestigationStatus = "open"
	InvestigationStatusInProgress InvestigationStatus = "in_progress"
	InvestigationStatusResolved   InvestigationStatus = "resolved"
	InvestigationStatusClosed     InvestigationStatus = "closed"
)

// AllInvestigationStatuses returns all valid investigation statuses
func AllInvestigationStatuses() []InvestigationStatus {
	return []InvestigationStatus{
		InvestigationStatusOpen,
		InvestigationStatusInProgress,
		InvestigationStatusResolved,
		InvestigationStatusClosed,
	}
}

// IsValid checks if the investigation status is valid
func (s InvestigationStatus) IsValid() bool {
	switch s {
	case InvestigationStatusOpen,
		InvestigationStatusInProgress,
		InvestigationStatusResolved,
		InvestigationStatusClosed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transitions leave this status.
// Only closed is terminal: resolved cases may still be closed.
func (s InvestigationStatus) IsTerminal() bool {
	return s == InvestigationStatusClosed
}

// String returns the string representation of the investigation status
func (s InvestigationStatus) String() string {
	return string(s)
}

// ParseInvestigationStatus parses a string into an InvestigationStatus
func ParseInvestigationStatus(s string) (InvestigationStatus, error) {
	status := InvestigationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid investigation status: %s", s)
	}
	return status, nil
}
