package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/utils/logging"
)

// referenceRetryLimit bounds retries when a generated reference number
// collides with an existing one. Collisions are rare (36^4 suffixes per day).
const referenceRetryLimit = 5

// CreateInvestigation opens a new investigation for a stored message.
// Action suggestions are generated before anything is persisted, so a
// generation failure leaves no partial state behind.
func (uc *UseCases) CreateInvestigation(ctx context.Context, messageID types.MessageID, priority types.Priority, customerInfo map[string]any) (*model.Investigation, error) {
	msg, err := uc.repo.Message().Get(ctx, messageID)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("message_id", messageID))
		}
		return nil, goerr.Wrap(err, "failed to get message", goerr.V("message_id", messageID))
	}

	suggestions, err := uc.classifier.SuggestActions(ctx, msg.Content, msg.Attributes)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to suggest actions for new investigation",
			goerr.V("message_id", messageID))
	}

	now := time.Now().UTC()
	var created *model.Investigation
	for attempt := 0; attempt < referenceRetryLimit; attempt++ {
		ref, err := newReferenceNumber(now)
		if err != nil {
			return nil, err
		}

		created, err = uc.repo.Investigation().Create(ctx, &model.Investigation{
			ReferenceNumber: ref,
			MessageID:       messageID,
			Status:          types.InvestigationStatusOpen,
			Priority:        priority.Normalize(),
			CustomerInfo:    customerInfo,
		})
		if err == nil {
			break
		}
		if !isRepoConflict(err) {
			return nil, goerr.Wrap(err, "failed to create investigation")
		}
		logging.From(ctx).Warn("reference number collision, retrying",
			"reference_number", ref, "attempt", attempt+1)
		created = nil
	}
	if created == nil {
		return nil, goerr.New("could not allocate a unique reference number",
			goerr.V("attempts", referenceRetryLimit))
	}

	for _, suggestion := range suggestions {
		deadline := now.AddDate(0, 0, suggestion.DeadlineDays())
		if _, err := uc.repo.Action().Create(ctx, &model.Action{
			InvestigationID:   created.ID,
			ActionType:        suggestion.Type,
			Description:       suggestion.Description,
			SuggestedResponse: suggestion.SuggestedResponse,
			Status:            types.ActionStatusPending,
			Priority:          suggestion.Priority.Normalize(),
			Deadline:          deadline,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to create suggested action",
				goerr.V("investigation_id", created.ID))
		}
	}

	return created, nil
}

// AddActionInput carries the caller-provided fields of a new action
type AddActionInput struct {
	Type              string
	Description       string
	SuggestedResponse string
	Priority          types.Priority
	DeadlineDays      int
}

// AddAction appends an action to an investigation. The first action moves
// an open investigation to in_progress.
func (uc *UseCases) AddAction(ctx context.Context, invID types.InvestigationID, input AddActionInput) (*model.Action, error) {
	if input.Type == "" {
		return nil, goerr.Wrap(ErrInvalidInput, "action type is required")
	}

	inv, err := uc.getInvestigation(ctx, invID)
	if err != nil {
		return nil, err
	}

	days := input.DeadlineDays
	if days <= 0 {
		days = 3
	}

	action, err := uc.repo.Action().Create(ctx, &model.Action{
		InvestigationID:   invID,
		ActionType:        input.Type,
		Description:       input.Description,
		SuggestedResponse: input.SuggestedResponse,
		Status:            types.ActionStatusPending,
		Priority:          input.Priority.Normalize(),
		Deadline:          time.Now().UTC().AddDate(0, 0, days),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create action", goerr.V("investigation_id", invID))
	}

	if inv.Status == types.InvestigationStatusOpen {
		inv.Status = types.InvestigationStatusInProgress
		if _, err := uc.repo.Investigation().Update(ctx, inv); err != nil {
			return nil, goerr.Wrap(err, "failed to advance investigation to in_progress",
				goerr.V("investigation_id", invID))
		}
	}

	return action, nil
}

// UpdateActionStatus transitions an action and re-evaluates whether the
// owning investigation is fully completed.
func (uc *UseCases) UpdateActionStatus(ctx context.Context, actionID types.ActionID, newStatus types.ActionStatus, notes string) (*model.Action, error) {
	if !newStatus.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid action status",
			goerr.V("status", newStatus))
	}

	action, err := uc.repo.Action().Get(ctx, actionID)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "action not found", goerr.V("action_id", actionID))
		}
		return nil, goerr.Wrap(err, "failed to get action", goerr.V("action_id", actionID))
	}

	action.Status = newStatus
	if notes != "" {
		action.Notes = notes
	}
	if newStatus == types.ActionStatusCompleted && action.CompletedAt == nil {
		now := time.Now().UTC()
		action.CompletedAt = &now
	}

	updated, err := uc.repo.Action().Update(ctx, action)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update action", goerr.V("action_id", actionID))
	}

	if err := uc.checkCompletion(ctx, action.InvestigationID); err != nil {
		return nil, err
	}

	return updated, nil
}

// checkCompletion resolves an investigation when every one of its actions is
// completed. Already-resolved and closed investigations are left alone, so
// status only ever moves forward.
func (uc *UseCases) checkCompletion(ctx context.Context, invID types.InvestigationID) error {
	inv, err := uc.getInvestigation(ctx, invID)
	if err != nil {
		return err
	}
	if inv.Status == types.InvestigationStatusResolved || inv.Status == types.InvestigationStatusClosed {
		return nil
	}

	actions, err := uc.repo.Action().ListByInvestigation(ctx, invID)
	if err != nil {
		return goerr.Wrap(err, "failed to list actions", goerr.V("investigation_id", invID))
	}
	if len(actions) == 0 {
		return nil
	}
	for _, action := range actions {
		if action.Status != types.ActionStatusCompleted {
			return nil
		}
	}

	inv.Status = types.InvestigationStatusResolved
	if inv.ResolvedAt == nil {
		now := time.Now().UTC()
		inv.ResolvedAt = &now
	}
	if _, err := uc.repo.Investigation().Update(ctx, inv); err != nil {
		return goerr.Wrap(err, "failed to resolve completed investigation",
			goerr.V("investigation_id", invID))
	}

	logging.From(ctx).Info("investigation auto-resolved, all actions completed",
		"investigation_id", invID, "reference_number", inv.ReferenceNumber)
	return nil
}

// ResolveInvestigation marks an investigation resolved. Closed is sticky:
// resolving a closed investigation only overwrites the notes. ResolvedAt is
// set on the first resolution and never rewritten.
func (uc *UseCases) ResolveInvestigation(ctx context.Context, invID types.InvestigationID, notes string) (*model.Investigation, error) {
	inv, err := uc.getInvestigation(ctx, invID)
	if err != nil {
		return nil, err
	}

	inv.ResolutionNotes = notes
	if inv.Status != types.InvestigationStatusClosed {
		inv.Status = types.InvestigationStatusResolved
	}
	if inv.ResolvedAt == nil {
		now := time.Now().UTC()
		inv.ResolvedAt = &now
	}

	updated, err := uc.repo.Investigation().Update(ctx, inv)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve investigation", goerr.V("investigation_id", invID))
	}
	return updated, nil
}

// CloseInvestigation closes an investigation unconditionally. Closed is terminal.
func (uc *UseCases) CloseInvestigation(ctx context.Context, invID types.InvestigationID) (*model.Investigation, error) {
	inv, err := uc.getInvestigation(ctx, invID)
	if err != nil {
		return nil, err
	}

	inv.Status = types.InvestigationStatusClosed

	updated, err := uc.repo.Investigation().Update(ctx, inv)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to close investigation", goerr.V("investigation_id", invID))
	}
	return updated, nil
}

// ListInvestigations returns one page of investigation summaries with
// per-item action counts and days open.
func (uc *UseCases) ListInvestigations(ctx context.Context, opts ...interfaces.ListInvestigationOption) (*model.InvestigationPage, error) {
	cfg := interfaces.BuildListInvestigationConfig(opts...)

	items, total, err := uc.repo.Investigation().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list investigations")
	}

	now := time.Now().UTC()
	summaries := make([]*model.InvestigationSummary, 0, len(items))
	for _, inv := range items {
		summary := &model.InvestigationSummary{
			ID:              inv.ID,
			ReferenceNumber: inv.ReferenceNumber,
			Status:          inv.Status,
			Priority:        inv.Priority,
			CustomerName:    customerName(inv.CustomerInfo),
			CreatedAt:       inv.CreatedAt,
			UpdatedAt:       inv.UpdatedAt,
			DaysOpen:        int(now.Sub(inv.CreatedAt).Hours() / 24),
		}

		if msg, err := uc.repo.Message().Get(ctx, inv.MessageID); err == nil {
			summary.WireID = msg.WireID
		}

		actions, err := uc.repo.Action().ListByInvestigation(ctx, inv.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list actions", goerr.V("investigation_id", inv.ID))
		}
		for _, action := range actions {
			summary.ActionCounts.Total++
			switch action.Status {
			case types.ActionStatusPending:
				summary.ActionCounts.Pending++
			case types.ActionStatusCompleted:
				summary.ActionCounts.Completed++
			}
		}

		summaries = append(summaries, summary)
	}

	return &model.InvestigationPage{
		Total:  total,
		Items:  summaries,
		Limit:  cfg.Limit(),
		Offset: cfg.Offset(),
	}, nil
}

// GetInvestigation returns an investigation with its source message and actions
func (uc *UseCases) GetInvestigation(ctx context.Context, invID types.InvestigationID) (*model.InvestigationDetail, error) {
	inv, err := uc.getInvestigation(ctx, invID)
	if err != nil {
		return nil, err
	}
	return uc.buildDetail(ctx, inv)
}

// GetInvestigationByReference returns an investigation detail looked up by
// its reference number
func (uc *UseCases) GetInvestigationByReference(ctx context.Context, referenceNumber string) (*model.InvestigationDetail, error) {
	inv, err := uc.repo.Investigation().GetByReference(ctx, referenceNumber)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "investigation not found",
				goerr.V("reference_number", referenceNumber))
		}
		return nil, goerr.Wrap(err, "failed to get investigation",
			goerr.V("reference_number", referenceNumber))
	}
	return uc.buildDetail(ctx, inv)
}

// DeleteInvestigation removes an investigation and all of its actions
func (uc *UseCases) DeleteInvestigation(ctx context.Context, invID types.InvestigationID) error {
	if _, err := uc.getInvestigation(ctx, invID); err != nil {
		return err
	}

	if err := uc.repo.Action().DeleteByInvestigation(ctx, invID); err != nil {
		return goerr.Wrap(err, "failed to delete actions", goerr.V("investigation_id", invID))
	}
	if err := uc.repo.Investigation().Delete(ctx, invID); err != nil {
		return goerr.Wrap(err, "failed to delete investigation", goerr.V("investigation_id", invID))
	}
	return nil
}

// GenerateNotification produces customer correspondence for an investigation
func (uc *UseCases) GenerateNotification(ctx context.Context, invID types.InvestigationID, notificationType string) (*model.Notification, error) {
	inv, err := uc.getInvestigation(ctx, invID)
	if err != nil {
		return nil, err
	}

	notification, err := uc.classifier.Notification(ctx, inv, notificationType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate notification",
			goerr.V("investigation_id", invID))
	}
	return notification, nil
}

// GetAnalytics aggregates metrics over all investigations and actions
func (uc *UseCases) GetAnalytics(ctx context.Context) (*model.Analytics, error) {
	statusCounts, err := uc.repo.Investigation().CountByStatus(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count investigations by status")
	}
	priorityCounts, err := uc.repo.Investigation().CountByPriority(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count investigations by priority")
	}
	actionTypeCounts, err := uc.repo.Action().CountByType(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count actions by type")
	}

	total := 0
	for _, n := range statusCounts {
		total += n
	}

	resolved, err := uc.repo.Investigation().ListResolved(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list resolved investigations")
	}

	var avgHours float64
	if len(resolved) > 0 {
		var totalHours float64
		for _, inv := range resolved {
			totalHours += inv.ResolvedAt.Sub(inv.CreatedAt).Hours()
		}
		avgHours = totalHours / float64(len(resolved))
	}

	return &model.Analytics{
		StatusCounts:        statusCounts,
		PriorityCounts:      priorityCounts,
		AvgResolutionHours:  avgHours,
		TotalInvestigations: total,
		ActionTypeCounts:    actionTypeCounts,
		GeneratedAt:         time.Now().UTC(),
	}, nil
}

func (uc *UseCases) getInvestigation(ctx context.Context, invID types.InvestigationID) (*model.Investigation, error) {
	inv, err := uc.repo.Investigation().Get(ctx, invID)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "investigation not found",
				goerr.V("investigation_id", invID))
		}
		return nil, goerr.Wrap(err, "failed to get investigation",
			goerr.V("investigation_id", invID))
	}
	return inv, nil
}

func (uc *UseCases) buildDetail(ctx context.Context, inv *model.Investigation) (*model.InvestigationDetail, error) {
	detail := &model.InvestigationDetail{Investigation: inv}

	msg, err := uc.repo.Message().Get(ctx, inv.MessageID)
	if err != nil && !isRepoNotFound(err) {
		return nil, goerr.Wrap(err, "failed to get source message",
			goerr.V("message_id", inv.MessageID))
	}
	detail.Message = msg

	actions, err := uc.repo.Action().ListByInvestigation(ctx, inv.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list actions", goerr.V("investigation_id", inv.ID))
	}
	detail.Actions = actions

	return detail, nil
}

func customerName(info map[string]any) string {
	if info == nil {
		return ""
	}
	if name, ok := info["name"].(string); ok {
		return name
	}
	return ""
}
