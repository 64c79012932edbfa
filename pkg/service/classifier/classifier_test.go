package classifier_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/policy"
	"github.com/payops-lab/mtnavigator/pkg/service/classifier"
	"github.com/payops-lab/mtnavigator/pkg/service/llm"
)

func newClassifier(t *testing.T, mock *llm.Mock) *classifier.Classifier {
	t.Helper()
	cls, err := classifier.New(mock, policy.New())
	gt.NoError(t, err).Required()
	return cls
}

func TestSuggestActions(t *testing.T) {
	t.Run("parses a well-formed action list", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`[
			{"type": "information_request", "description": "Ask for confirmation",
			 "suggested_response": "Please confirm.", "priority": "high", "suggested_days": 5},
			{"type": "follow_up", "description": "Chase after the deadline",
			 "priority": "low", "suggested_days": 2}
		]`}}
		cls := newClassifier(t, mock)

		actions, err := cls.SuggestActions(context.Background(), "content", nil)
		gt.NoError(t, err).Required()

		gt.Number(t, len(actions)).Equal(2)
		gt.Value(t, actions[0].Type).Equal("information_request")
		gt.Value(t, actions[0].Priority).Equal(types.PriorityHigh)
		gt.Number(t, actions[0].Days).Equal(5)
		gt.Value(t, actions[1].Type).Equal("follow_up")
		gt.Value(t, actions[1].Priority).Equal(types.PriorityLow)
	})

	t.Run("coerces drifting value types", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`[
			{"type": "other", "description": "desc", "priority": "URGENT", "suggested_days": "7"}
		]`}}
		cls := newClassifier(t, mock)

		actions, err := cls.SuggestActions(context.Background(), "content", nil)
		gt.NoError(t, err).Required()

		gt.Number(t, len(actions)).Equal(1)
		gt.Value(t, actions[0].Priority).Equal(types.PriorityMedium)
		gt.Number(t, actions[0].Days).Equal(7)
	})

	t.Run("deadline clamps to the instructed range", func(t *testing.T) {
		action := model.SuggestedAction{Days: 45}
		gt.Number(t, action.DeadlineDays()).Equal(10)
		gt.Number(t, model.SuggestedAction{Days: 0}.DeadlineDays()).Equal(3)
		gt.Number(t, model.SuggestedAction{Days: -2}.DeadlineDays()).Equal(3)
		gt.Number(t, model.SuggestedAction{Days: 4}.DeadlineDays()).Equal(4)
	})

	t.Run("garbage output yields the fallback action", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{"I cannot produce JSON today"}}
		cls := newClassifier(t, mock)

		actions, err := cls.SuggestActions(context.Background(), "content", nil)
		gt.NoError(t, err).Required()

		gt.Number(t, len(actions)).Equal(1)
		gt.Value(t, actions[0].Type).Equal("information_request")
		gt.Value(t, actions[0].Priority).Equal(types.PriorityMedium)
		gt.Number(t, actions[0].Days).Equal(3)
	})

	t.Run("single object coerces to one action", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`{"type": "amendment_request", "description": "Fix field 59"}`}}
		cls := newClassifier(t, mock)

		actions, err := cls.SuggestActions(context.Background(), "content", nil)
		gt.NoError(t, err).Required()
		gt.Number(t, len(actions)).Equal(1)
		gt.Value(t, actions[0].Type).Equal("amendment_request")
	})

	t.Run("generation failure propagates", func(t *testing.T) {
		mock := &llm.Mock{CompleteFn: func(ctx context.Context, prompt string) (string, error) {
			return "", goerr.Wrap(llm.ErrGeneration, "quota exceeded")
		}}
		cls := newClassifier(t, mock)

		_, err := cls.SuggestActions(context.Background(), "content", nil)
		gt.Error(t, err)
		gt.Value(t, errors.Is(err, llm.ErrGeneration)).Equal(true)
	})
}

func TestClassify(t *testing.T) {
	t.Run("policy fills omitted regulations, SLA, and template", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`{
			"workcase_type": "CANCELLATION",
			"reasoning": "Sender requests recall",
			"extracted_fields": {"reference": "TRX-9", "amount": 500, "currency": "GBP"},
			"next_steps": ["Contact beneficiary bank"]
		}`}}
		cls := newClassifier(t, mock)

		c, err := cls.Classify(context.Background(), "content")
		gt.NoError(t, err).Required()

		gt.Value(t, c.WorkcaseType).Equal(types.WorkcaseCancellation)
		gt.Value(t, c.Fallback).Equal(false)
		gt.Number(t, len(c.Regulations)).Equal(2)
		gt.Number(t, c.SLA.Acknowledgment).Equal(4)
		gt.Value(t, strings.Contains(c.ResponseTemplate, "TRX-9")).Equal(true)
		gt.Value(t, strings.Contains(c.ResponseTemplate, "500 GBP")).Equal(true)
	})

	t.Run("generated regulations and SLA are kept", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`{
			"workcase_type": "QUERY",
			"regulations": [{"name": "Local Rule", "description": "d", "reference": "LR-1"}],
			"sla": {"acknowledgment": 2, "initial_research": 4, "correspondence": 6, "follow_up": 8, "resolution": 10},
			"response_template": "Prewritten response"
		}`}}
		cls := newClassifier(t, mock)

		c, err := cls.Classify(context.Background(), "content")
		gt.NoError(t, err).Required()

		gt.Number(t, len(c.Regulations)).Equal(1)
		gt.Value(t, c.Regulations[0].Name).Equal("Local Rule")
		gt.Number(t, c.SLA.Resolution).Equal(10)
		gt.Value(t, c.ResponseTemplate).Equal("Prewritten response")
	})

	t.Run("unknown type normalizes and falls back to defaults", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{"absolute nonsense"}}
		cls := newClassifier(t, mock)

		c, err := cls.Classify(context.Background(), "content")
		gt.NoError(t, err).Required()

		gt.Value(t, c.WorkcaseType).Equal(types.WorkcaseUnknown)
		gt.Value(t, c.Fallback).Equal(true)
		gt.Number(t, len(c.NextSteps)).Equal(3)
		gt.Number(t, len(c.Timeline)).Equal(1)
		gt.Number(t, len(c.Regulations)).Equal(1)
		gt.Number(t, c.SLA.Acknowledgment).Equal(24)
		gt.Value(t, c.ResponseTemplate).NotEqual("")
	})
}

func TestConvert(t *testing.T) {
	t.Run("structured output passes through", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`{"mx_message": "<Document/>", "notes": "clean"}`}}
		cls := newClassifier(t, mock)

		obj, fallback, err := cls.Convert(context.Background(), "content")
		gt.NoError(t, err).Required()
		gt.Value(t, fallback).Equal(false)
		gt.Value(t, obj["mx_message"]).Equal("<Document/>")
	})

	t.Run("raw text is preserved on fallback", func(t *testing.T) {
		raw := "Here is the conversion but not as JSON"
		mock := &llm.Mock{Responses: []string{raw}}
		cls := newClassifier(t, mock)

		obj, fallback, err := cls.Convert(context.Background(), "content")
		gt.NoError(t, err).Required()
		gt.Value(t, fallback).Equal(true)
		gt.Value(t, obj["mx_message"]).Equal(raw)
		gt.Value(t, strings.Contains(obj["notes"].(string), "raw conversion")).Equal(true)
	})
}

func TestExtract(t *testing.T) {
	t.Run("attributes pass through", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`{"attributes": {"sender": "BANKUS33"}, "notes": ""}`}}
		cls := newClassifier(t, mock)

		obj, fallback, err := cls.Extract(context.Background(), "content")
		gt.NoError(t, err).Required()
		gt.Value(t, fallback).Equal(false)
		attrs := obj["attributes"].(map[string]any)
		gt.Value(t, attrs["sender"]).Equal("BANKUS33")
	})

	t.Run("raw text becomes a raw_extraction attribute on fallback", func(t *testing.T) {
		raw := "sender is BANKUS33, amount unclear"
		mock := &llm.Mock{Responses: []string{raw}}
		cls := newClassifier(t, mock)

		obj, fallback, err := cls.Extract(context.Background(), "content")
		gt.NoError(t, err).Required()
		gt.Value(t, fallback).Equal(true)
		attrs := obj["attributes"].(map[string]any)
		gt.Value(t, attrs["raw_extraction"]).Equal(raw)
	})
}

func TestNotification(t *testing.T) {
	inv := &model.Investigation{
		ID:              types.InvestigationID(5),
		ReferenceNumber: "INV-20260829-TEST",
		Status:          types.InvestigationStatusInProgress,
		CreatedAt:       time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
		CustomerInfo:    map[string]any{"name": "ACME Corp"},
	}

	t.Run("generated subject and body pass through", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{`{"subject": "Update", "body": "We are investigating."}`}}
		cls := newClassifier(t, mock)

		n, err := cls.Notification(context.Background(), inv, "status_update")
		gt.NoError(t, err).Required()

		gt.Value(t, n.Subject).Equal("Update")
		gt.Value(t, n.Body).Equal("We are investigating.")
		gt.Value(t, n.ReferenceNumber).Equal("INV-20260829-TEST")
		gt.Value(t, n.NotificationType).Equal("status_update")
		gt.Value(t, n.GeneratedAt.IsZero()).Equal(false)
	})

	t.Run("fallback correspondence names the reference and status", func(t *testing.T) {
		mock := &llm.Mock{Responses: []string{"Dear customer, plain text only"}}
		cls := newClassifier(t, mock)

		n, err := cls.Notification(context.Background(), inv, "delay_notification")
		gt.NoError(t, err).Required()

		gt.Value(t, strings.Contains(n.Subject, "INV-20260829-TEST")).Equal(true)
		gt.Value(t, strings.Contains(n.Body, "in_progress")).Equal(true)
	})
}
