package policy_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/policy"
)

func TestRegulations(t *testing.T) {
	tbl := policy.New()

	t.Run("baseline record keeping for every type", func(t *testing.T) {
		for _, workcaseType := range types.AllWorkcaseTypes() {
			regs := tbl.Regulations(workcaseType)
			gt.Value(t, regs[0].Name).Equal("Record Keeping")
		}
	})

	t.Run("return timeframes for cancellation and return funds", func(t *testing.T) {
		for _, workcaseType := range []types.WorkcaseType{types.WorkcaseCancellation, types.WorkcaseReturnFunds} {
			regs := tbl.Regulations(workcaseType)
			gt.Number(t, len(regs)).Equal(2)
			gt.Value(t, regs[1].Name).Equal("Return Timeframes")
		}
	})

	t.Run("suspicious activity for regulatory compliance", func(t *testing.T) {
		regs := tbl.Regulations(types.WorkcaseRegulatoryCompliance)
		gt.Number(t, len(regs)).Equal(2)
		gt.Value(t, regs[1].Name).Equal("Suspicious Activity Reporting")
	})

	t.Run("unrecognized type gets baseline only", func(t *testing.T) {
		regs := tbl.Regulations(types.WorkcaseType("NO_SUCH_TYPE"))
		gt.Number(t, len(regs)).Equal(1)
	})
}

func TestSLA(t *testing.T) {
	tbl := policy.New()

	t.Run("base schedule", func(t *testing.T) {
		sla := tbl.SLA(types.WorkcaseNonReceipt)
		gt.Value(t, sla).Equal(model.SLASchedule{
			Acknowledgment:  24,
			InitialResearch: 48,
			Correspondence:  72,
			FollowUp:        120,
			Resolution:      240,
		})
	})

	t.Run("cancellation tightens the schedule", func(t *testing.T) {
		sla := tbl.SLA(types.WorkcaseCancellation)
		gt.Value(t, sla).Equal(model.SLASchedule{
			Acknowledgment:  4,
			InitialResearch: 8,
			Correspondence:  12,
			FollowUp:        120,
			Resolution:      72,
		})
	})

	t.Run("regulatory compliance loosens research and resolution", func(t *testing.T) {
		sla := tbl.SLA(types.WorkcaseRegulatoryCompliance)
		gt.Number(t, sla.InitialResearch).Equal(72)
		gt.Number(t, sla.Resolution).Equal(480)
		gt.Number(t, sla.Acknowledgment).Equal(24)
	})

	t.Run("override replaces the schedule", func(t *testing.T) {
		custom := model.SLASchedule{Acknowledgment: 1, InitialResearch: 2, Correspondence: 3, FollowUp: 4, Resolution: 5}
		tbl := policy.New(policy.WithSLAOverride(types.WorkcaseQuery, custom))
		gt.Value(t, tbl.SLA(types.WorkcaseQuery)).Equal(custom)
	})
}

func TestResponseTemplate(t *testing.T) {
	tbl := policy.New()

	t.Run("empty fields map renders defaults without leftover placeholders", func(t *testing.T) {
		rendered := tbl.ResponseTemplate(types.WorkcaseNonReceipt, map[string]any{})

		gt.Value(t, strings.Contains(rendered, "{reference}")).Equal(false)
		gt.Value(t, strings.Contains(rendered, "{amount}")).Equal(false)
		gt.Value(t, strings.Contains(rendered, "{date}")).Equal(false)
		gt.Value(t, strings.Contains(rendered, "Valued Correspondent")).Equal(true)
		gt.Value(t, strings.Contains(rendered, "USD")).Equal(true)
		gt.Value(t, strings.Contains(rendered, time.Now().UTC().Format("2006-01-02"))).Equal(true)
	})

	t.Run("extracted fields substitute into the template", func(t *testing.T) {
		rendered := tbl.ResponseTemplate(types.WorkcaseCancellation, map[string]any{
			"reference": "TRX-42",
			"amount":    float64(1500),
			"currency":  "EUR",
			"reason":    "duplicate instruction",
		})

		gt.Value(t, strings.Contains(rendered, "TRX-42")).Equal(true)
		gt.Value(t, strings.Contains(rendered, "1500 EUR")).Equal(true)
		gt.Value(t, strings.Contains(rendered, "duplicate instruction")).Equal(true)
	})

	t.Run("extra fields without placeholders are ignored", func(t *testing.T) {
		rendered := tbl.ResponseTemplate(types.WorkcaseUnknown, map[string]any{
			"reference":     "TRX-7",
			"unrelated_key": "should not appear",
		})

		gt.Value(t, strings.Contains(rendered, "TRX-7")).Equal(true)
		gt.Value(t, strings.Contains(rendered, "should not appear")).Equal(false)
	})

	t.Run("unrecognized type falls back to the generic template", func(t *testing.T) {
		rendered := tbl.ResponseTemplate(types.WorkcaseType("BOGUS"), nil)
		gt.Value(t, strings.Contains(rendered, "Investigation Request")).Equal(true)
	})

	t.Run("override replaces the template", func(t *testing.T) {
		tbl := policy.New(policy.WithTemplateOverride(types.WorkcaseQuery, "Query ref {reference}"))
		rendered := tbl.ResponseTemplate(types.WorkcaseQuery, map[string]any{"reference": "Q-1"})
		gt.Value(t, rendered).Equal("Query ref Q-1")
	})
}
