// Package policy holds the classification policy tables: regulatory notes,
// SLA hour schedules, and response templates keyed by workcase type. The
// tables fill the gaps the generative classifier leaves when its output
// omits regulations, SLA, or a response template.
package policy

import (
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// Table is a pure lookup over workcase-type policies. The zero configuration
// (New) carries the built-in defaults; overrides can replace SLA schedules
// and response templates per type.
type Table struct {
	slaOverrides      map[types.WorkcaseType]model.SLASchedule
	templateOverrides map[types.WorkcaseType]string
}

// Option configures a Table
type Option func(*Table)

// WithSLAOverride replaces the SLA schedule for a workcase type
func WithSLAOverride(t types.WorkcaseType, sla model.SLASchedule) Option {
	return func(tbl *Table) {
		tbl.slaOverrides[t] = sla
	}
}

// WithTemplateOverride replaces the response template for a workcase type
func WithTemplateOverride(t types.WorkcaseType, tmpl string) Option {
	return func(tbl *Table) {
		tbl.templateOverrides[t] = tmpl
	}
}

// New creates a policy table with the built-in defaults
func New(opts ...Option) *Table {
	tbl := &Table{
		slaOverrides:      make(map[types.WorkcaseType]model.SLASchedule),
		templateOverrides: make(map[types.WorkcaseType]string),
	}
	for _, opt := range opts {
		opt(tbl)
	}
	return tbl
}

// Regulations returns the regulatory notes for a workcase type. Every case
// carries the baseline record-keeping rule; cancellation and return-funds
// cases add the return-timeframe rule, and regulatory-compliance cases add
// the suspicious-activity rule.
func (tbl *Table) Regulations(t types.WorkcaseType) []model.Regulation {
	t = t.Normalize()

	regulations := []model.Regulation{
		{
			Name:        "Record Keeping",
			Description: "All investigation communications must be archived for at least 7 years",
			Reference:   "Banking Record-Keeping Standards",
		},
	}

	if t == types.WorkcaseCancellation || t == types.WorkcaseReturnFunds {
		regulations = append(regulations, model.Regulation{
			Name:        "Return Timeframes",
			Description: "Funds return requests must be processed within 10 business days",
			Reference:   "SWIFT Return Guidelines",
		})
	}

	if t == types.WorkcaseRegulatoryCompliance {
		regulations = append(regulations, model.Regulation{
			Name:        "Suspicious Activity Reporting",
			Description: "Potential suspicious activity must be reported to authorities within 30 days",
			Reference:   "AML Compliance Standards",
		})
	}

	return regulations
}

// SLA returns the hour schedule for a workcase type. Cancellations tighten
// the base schedule, compliance cases loosen research and resolution.
func (tbl *Table) SLA(t types.WorkcaseType) model.SLASchedule {
	t = t.Normalize()

	if sla, ok := tbl.slaOverrides[t]; ok {
		return sla
	}

	sla := model.SLASchedule{
		Acknowledgment:  24,
		InitialResearch: 48,
		Correspondence:  72,
		FollowUp:        120,
		Resolution:      240,
	}

	switch t {
	case types.WorkcaseCancellation:
		sla.Acknowledgment = 4
		sla.InitialResearch = 8
		sla.Correspondence = 12
		sla.Resolution = 72
	case types.WorkcaseRegulatoryCompliance:
		sla.InitialResearch = 72
		sla.Resolution = 480
	}

	return sla
}

// ResponseTemplate renders the response template for a workcase type with
// the extracted fields substituted. Rendering never fails: missing fields
// take safe defaults and unrecognized extracted fields are ignored unless
// the template happens to carry a matching placeholder.
func (tbl *Table) ResponseTemplate(t types.WorkcaseType, fields map[string]any) string {
	t = t.Normalize()

	tmpl, ok := tbl.templateOverrides[t]
	if !ok {
		tmpl, ok = responseTemplates[t]
		if !ok {
			tmpl = responseTemplates[types.WorkcaseUnknown]
		}
	}

	return substitute(tmpl, fields)
}

var responseTemplates = map[types.WorkcaseType]string{
	types.WorkcaseNonReceipt: `Subject: Investigation - Non-Receipt of Funds - Ref: {reference}

Dear {recipient},

We are investigating a case of non-receipt of funds reported by the beneficiary.

Transaction details:
- Reference: {reference}
- Amount: {amount} {currency}
- Date: {date}
- Beneficiary: {beneficiary}

Please provide information on the status of this payment.

Thank you,
Investigation Team
`,
	types.WorkcaseCancellation: `Subject: Urgent Cancellation Request - Ref: {reference}

Dear {recipient},

We request the cancellation of the following payment:

Transaction details:
- Reference: {reference}
- Amount: {amount} {currency}
- Date: {date}

Reason for cancellation: {reason}

Please confirm.
`,
	types.WorkcaseUnknown: `Subject: Investigation Request - Ref: {reference}

Dear {recipient},

We are investigating the following transaction:

Transaction details:
- Reference: {reference}

We will provide additional information shortly.

Thank you,
Investigation Team
`,
}
