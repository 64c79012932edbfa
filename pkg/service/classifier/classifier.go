// Package classifier builds prompts for the generative collaborator and
// normalizes its responses into typed classification objects. Malformed but
// present output degrades through the normalization fallback chain; a failed
// generation call propagates as an error.
package classifier

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/normalize"
	"github.com/payops-lab/mtnavigator/pkg/policy"
	"github.com/payops-lab/mtnavigator/pkg/service/llm"
)

//go:embed prompt/suggest_actions.md
var suggestActionsPromptTmpl string

//go:embed prompt/classify.md
var classifyPromptTmpl string

//go:embed prompt/convert.md
var convertPromptTmpl string

//go:embed prompt/extract.md
var extractPromptTmpl string

//go:embed prompt/notification.md
var notificationPromptTmpl string

var (
	suggestActionsPrompt = template.Must(template.New("suggest_actions").Parse(suggestActionsPromptTmpl))
	classifyPrompt       = template.Must(template.New("classify").Parse(classifyPromptTmpl))
	convertPrompt        = template.Must(template.New("convert").Parse(convertPromptTmpl))
	extractPrompt        = template.Must(template.New("extract").Parse(extractPromptTmpl))
	notificationPrompt   = template.Must(template.New("notification").Parse(notificationPromptTmpl))
)

// Classifier derives suggested actions, workcase classifications, format
// conversions, and attribute extractions from message content
type Classifier struct {
	llm    llm.Service
	policy *policy.Table
}

// New creates a Classifier
func New(svc llm.Service, table *policy.Table) (*Classifier, error) {
	if svc == nil {
		return nil, goerr.New("LLM service is required")
	}
	if table == nil {
		table = policy.New()
	}
	return &Classifier{llm: svc, policy: table}, nil
}

// SuggestActions proposes remediation actions for a message. The fallback
// is a single generic information request so a new investigation always
// starts with at least one tracked action.
func (c *Classifier) SuggestActions(ctx context.Context, content string, attrs map[string]string) ([]model.SuggestedAction, error) {
	prompt, err := renderPrompt(suggestActionsPrompt, map[string]string{
		"Content":    content,
		"Attributes": indentJSON(attrs),
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to suggest investigation actions")
	}

	result := normalize.Normalize(raw, normalize.List, defaultSuggestedActions)

	entries := result.AsList()
	actions := make([]model.SuggestedAction, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		actions = append(actions, model.SuggestedAction{
			Type:              asString(obj["type"], "information_request"),
			Description:       asString(obj["description"], "Analyze the message and determine next steps"),
			SuggestedResponse: asString(obj["suggested_response"], ""),
			Priority:          asPriority(obj["priority"]),
			Days:              asInt(obj["suggested_days"], 3),
		})
	}

	if len(actions) == 0 {
		fallback := defaultSuggestedActions().([]any)[0].(map[string]any)
		actions = append(actions, model.SuggestedAction{
			Type:              asString(fallback["type"], "information_request"),
			Description:       asString(fallback["description"], ""),
			SuggestedResponse: asString(fallback["suggested_response"], ""),
			Priority:          types.PriorityMedium,
			Days:              3,
		})
	}

	return actions, nil
}

// Classify runs full workcase classification for an STP failure message.
// Regulations, SLA, and response template are filled from the policy table
// whenever the generative output omits them.
func (c *Classifier) Classify(ctx context.Context, content string) (*model.CaseClassification, error) {
	prompt, err := renderPrompt(classifyPrompt, map[string]string{"Content": content})
	if err != nil {
		return nil, err
	}

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify workcase")
	}

	result := normalize.Normalize(raw, normalize.Object, defaultClassification)
	obj := result.AsObject()

	classification := &model.CaseClassification{
		WorkcaseType:    types.WorkcaseType(asString(obj["workcase_type"], "")).Normalize(),
		Reasoning:       asString(obj["reasoning"], ""),
		ExtractedFields: asObject(obj["extracted_fields"]),
		NextSteps:       asStringSlice(obj["next_steps"]),
		Timeline:        asTimeline(obj["timeline"]),
		Fallback:        result.Fallback(),
	}
	if classification.ExtractedFields == nil {
		classification.ExtractedFields = map[string]any{}
	}

	classification.Regulations = asRegulations(obj["regulations"])
	if classification.Regulations == nil {
		classification.Regulations = c.policy.Regulations(classification.WorkcaseType)
	}

	if sla, ok := asSLA(obj["sla"]); ok {
		classification.SLA = sla
	} else {
		classification.SLA = c.policy.SLA(classification.WorkcaseType)
	}

	classification.ResponseTemplate = asString(obj["response_template"], "")
	if classification.ResponseTemplate == "" {
		classification.ResponseTemplate = c.policy.ResponseTemplate(
			classification.WorkcaseType, classification.ExtractedFields)
	}

	return classification, nil
}

// Convert requests an MT to MX format conversion. On total fallback the raw
// text is preserved with an explanatory note instead of a structured payload.
func (c *Classifier) Convert(ctx context.Context, content string) (map[string]any, bool, error) {
	prompt, err := renderPrompt(convertPrompt, map[string]string{"Content": content})
	if err != nil {
		return nil, false, err
	}

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to convert message")
	}

	result := normalize.Normalize(raw, normalize.Object, func() any {
		return map[string]any{
			"mx_message": raw,
			"notes":      "Could not extract structured data, returning raw conversion",
		}
	})

	return result.AsObject(), result.Fallback(), nil
}

// Extract requests attribute extraction. On total fallback the raw text is
// wrapped as a single raw_extraction attribute.
func (c *Classifier) Extract(ctx context.Context, content string) (map[string]any, bool, error) {
	prompt, err := renderPrompt(extractPrompt, map[string]string{"Content": content})
	if err != nil {
		return nil, false, err
	}

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to extract attributes")
	}

	result := normalize.Normalize(raw, normalize.Object, func() any {
		return map[string]any{
			"attributes": map[string]any{"raw_extraction": raw},
			"notes":      "Could not extract structured data",
		}
	})

	return result.AsObject(), result.Fallback(), nil
}

// Notification generates customer correspondence about an investigation
func (c *Classifier) Notification(ctx context.Context, inv *model.Investigation, notificationType string) (*model.Notification, error) {
	prompt, err := renderPrompt(notificationPrompt, map[string]string{
		"Reference":        inv.ReferenceNumber,
		"Status":           inv.Status.String(),
		"CreatedAt":        inv.CreatedAt.UTC().Format(time.RFC3339),
		"CustomerInfo":     indentJSON(inv.CustomerInfo),
		"NotificationType": notificationType,
	})
	if err != nil {
		return nil, err
	}

	raw, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate notification")
	}

	result := normalize.Normalize(raw, normalize.Object, func() any {
		return map[string]any{
			"subject": "Update on your payment investigation - Ref: " + inv.ReferenceNumber,
			"body": "Dear Customer,\n\nThis is an update regarding your payment investigation (Reference: " +
				inv.ReferenceNumber + ").\n\nThe current status is: " + inv.Status.String() +
				".\n\nWe will continue to keep you informed of any developments.\n\nBest regards,\nThe Investigation Team",
		}
	})
	obj := result.AsObject()

	return &model.Notification{
		Subject:          asString(obj["subject"], "Update on your payment investigation - Ref: "+inv.ReferenceNumber),
		Body:             asString(obj["body"], ""),
		InvestigationID:  inv.ID,
		ReferenceNumber:  inv.ReferenceNumber,
		NotificationType: notificationType,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

func defaultSuggestedActions() any {
	return []any{
		map[string]any{
			"type":               "information_request",
			"description":        "Analyze the message and determine next steps",
			"suggested_response": "Based on our initial analysis, we need to investigate further.",
			"priority":           "medium",
			"suggested_days":     float64(3),
		},
	}
}

func defaultClassification() any {
	return map[string]any{
		"workcase_type":    "UNKNOWN",
		"reasoning":        "Could not determine workcase type from message analysis",
		"extracted_fields": map[string]any{},
		"next_steps": []any{
			"Review the message manually",
			"Consult with an investigation specialist",
			"Contact the sender for clarification",
		},
		"timeline": []any{
			map[string]any{
				"date":   time.Now().UTC().Format("2006-01-02"),
				"action": "Initial review",
				"status": "open",
			},
		},
	}
}

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to render prompt template",
			goerr.V("template", tmpl.Name()))
	}
	return buf.String(), nil
}

func indentJSON(v any) string {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
