package model

import (
	"time"

	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// Regulation is a regulatory note attached to a case classification
type Regulation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
}

// SLASchedule holds per-stage time budgets in hours for a workcase type.
// Informational only: no in-core timer enforces these.
type SLASchedule struct {
	Acknowledgment  int `json:"acknowledgment"`
	InitialResearch int `json:"initial_research"`
	Correspondence  int `json:"correspondence"`
	FollowUp        int `json:"follow_up"`
	Resolution      int `json:"resolution"`
}

// TimelineEntry is one step of a suggested investigation timeline
type TimelineEntry struct {
	Date   string `json:"date"`
	Action string `json:"action"`
	Status string `json:"status"`
}

// CaseClassification is the full classification of a failed message.
// Transient: it decorates processing results and seeds initial actions,
// but is never persisted as its own entity.
type CaseClassification struct {
	WorkcaseType     types.WorkcaseType
	Reasoning        string
	ExtractedFields  map[string]any
	NextSteps        []string
	Timeline         []TimelineEntry
	Regulations      []Regulation
	SLA              SLASchedule
	ResponseTemplate string
	Fallback         bool // true if the generative output could not be parsed
}

// ProcessResult is the outcome of processing a single message
type ProcessResult struct {
	WireID           string
	Mode             types.ProcessingMode
	ConvertedContent string
	Attributes       map[string]any
	Notes            string
	Classification   *CaseClassification
	Fallback         bool
	ProcessingTime   float64 // seconds
	ProcessedAt      time.Time
}

// BulkEntry is one row outcome of bulk processing. A failed row carries
// Error and a nil Result; other rows are unaffected. BatchID groups all
// entries of one bulk run.
type BulkEntry struct {
	BatchID     string
	WireID      string
	Result      *ProcessResult
	Error       string
	ProcessedAt time.Time
}
