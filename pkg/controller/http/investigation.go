package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/interfaces"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/usecase"
)

type investigationResponse struct {
	ID              int64          `json:"id"`
	ReferenceNumber string         `json:"reference_number"`
	MessageID       int64          `json:"message_id"`
	Status          string         `json:"status"`
	Priority        string         `json:"priority"`
	CustomerInfo    map[string]any `json:"customer_info,omitempty"`
	ResolutionNotes string         `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}

func toInvestigationResponse(inv *model.Investigation) *investigationResponse {
	return &investigationResponse{
		ID:              int64(inv.ID),
		ReferenceNumber: inv.ReferenceNumber,
		MessageID:       int64(inv.MessageID),
		Status:          inv.Status.String(),
		Priority:        inv.Priority.String(),
		CustomerInfo:    inv.CustomerInfo,
		ResolutionNotes: inv.ResolutionNotes,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		ResolvedAt:      inv.ResolvedAt,
	}
}

type actionResponse struct {
	ID                int64      `json:"id"`
	InvestigationID   int64      `json:"investigation_id"`
	ActionType        string     `json:"action_type"`
	Description       string     `json:"description"`
	SuggestedResponse string     `json:"suggested_response,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	Deadline          time.Time  `json:"deadline"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toActionResponse(action *model.Action) *actionResponse {
	return &actionResponse{
		ID:                int64(action.ID),
		InvestigationID:   int64(action.InvestigationID),
		ActionType:        action.ActionType,
		Description:       action.Description,
		SuggestedResponse: action.SuggestedResponse,
		Notes:             action.Notes,
		Status:            action.Status.String(),
		Priority:          action.Priority.String(),
		Deadline:          action.Deadline,
		CompletedAt:       action.CompletedAt,
		CreatedAt:         action.CreatedAt,
		UpdatedAt:         action.UpdatedAt,
	}
}

func (s *Server) handleCreateInvestigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		MessageID    int64          `json:"message_id"`
		Priority     string         `json:"priority"`
		CustomerInfo map[string]any `json:"customer_info"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}
	if req.MessageID == 0 {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "message_id is required"))
		return
	}

	inv, err := s.uc.CreateInvestigation(ctx,
		types.MessageID(req.MessageID),
		types.Priority(req.Priority),
		req.CustomerInfo)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toInvestigationResponse(inv))
}

func (s *Server) handleListInvestigations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var opts []interfaces.ListInvestigationOption

	if v := r.URL.Query().Get("status"); v != "" {
		status, err := types.ParseInvestigationStatus(v)
		if err != nil {
			handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid status filter",
				goerr.V("status", v)))
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		priority, err := types.ParsePriority(v)
		if err != nil {
			handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid priority filter",
				goerr.V("priority", v)))
			return
		}
		opts = append(opts, interfaces.WithPriority(priority))
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	opts = append(opts, interfaces.WithPage(limit, offset))

	page, err := s.uc.ListInvestigations(ctx, opts...)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	items := make([]map[string]any, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, map[string]any{
			"id":               int64(item.ID),
			"reference_number": item.ReferenceNumber,
			"status":           item.Status.String(),
			"priority":         item.Priority.String(),
			"message_id":       item.WireID,
			"customer_name":    item.CustomerName,
			"action_counts": map[string]int{
				"total":     item.ActionCounts.Total,
				"pending":   item.ActionCounts.Pending,
				"completed": item.ActionCounts.Completed,
			},
			"created_at": item.CreatedAt,
			"updated_at": item.UpdatedAt,
			"days_open":  item.DaysOpen,
		})
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"total":  page.Total,
		"items":  items,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

func (s *Server) investigationDetailResponse(detail *model.InvestigationDetail) map[string]any {
	resp := map[string]any{
		"investigation": toInvestigationResponse(detail.Investigation),
	}
	if detail.Message != nil {
		resp["message"] = toMessageResponse(detail.Message)
	}
	actions := make([]*actionResponse, 0, len(detail.Actions))
	for _, action := range detail.Actions {
		actions = append(actions, toActionResponse(action))
	}
	resp["actions"] = actions
	return resp
}

func (s *Server) handleGetInvestigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	detail, err := s.uc.GetInvestigation(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, s.investigationDetailResponse(detail))
}

func (s *Server) handleGetInvestigationByReference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := s.uc.GetInvestigationByReference(ctx, chi.URLParam(r, "reference"))
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, s.investigationDetailResponse(detail))
}

func (s *Server) handleAddAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Type              string `json:"action_type"`
		Description       string `json:"description"`
		SuggestedResponse string `json:"suggested_response"`
		Priority          string `json:"priority"`
		DeadlineDays      int    `json:"deadline_days"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	action, err := s.uc.AddAction(ctx, id, usecase.AddActionInput{
		Type:              req.Type,
		Description:       req.Description,
		SuggestedResponse: req.SuggestedResponse,
		Priority:          types.Priority(req.Priority),
		DeadlineDays:      req.DeadlineDays,
	})
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, toActionResponse(action))
}

func (s *Server) handleUpdateActionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid action ID"))
		return
	}

	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	status, err := types.ParseActionStatus(req.Status)
	if err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid action status",
			goerr.V("status", req.Status)))
		return
	}

	action, err := s.uc.UpdateActionStatus(ctx, types.ActionID(id), status, req.Notes)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toActionResponse(action))
}

func (s *Server) handleResolveInvestigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}

	inv, err := s.uc.ResolveInvestigation(ctx, id, req.Notes)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toInvestigationResponse(inv))
}

func (s *Server) handleCloseInvestigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	inv, err := s.uc.CloseInvestigation(ctx, id)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toInvestigationResponse(inv))
}

func (s *Server) handleDeleteInvestigation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	if err := s.uc.DeleteInvestigation(ctx, id); err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGenerateNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := investigationIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Type string `json:"notification_type"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}
	if req.Type == "" {
		req.Type = "status_update"
	}

	notification, err := s.uc.GenerateNotification(ctx, id, req.Type)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"subject":           notification.Subject,
		"body":              notification.Body,
		"investigation_id":  int64(notification.InvestigationID),
		"reference_number":  notification.ReferenceNumber,
		"notification_type": notification.NotificationType,
		"generated_at":      notification.GeneratedAt,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	analytics, err := s.uc.GetAnalytics(ctx)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	statusCounts := make(map[string]int, len(analytics.StatusCounts))
	for status, n := range analytics.StatusCounts {
		statusCounts[status.String()] = n
	}
	priorityCounts := make(map[string]int, len(analytics.PriorityCounts))
	for priority, n := range analytics.PriorityCounts {
		priorityCounts[priority.String()] = n
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"status_counts":        statusCounts,
		"priority_counts":      priorityCounts,
		"avg_resolution_hours": analytics.AvgResolutionHours,
		"total_investigations": analytics.TotalInvestigations,
		"action_type_counts":   analytics.ActionTypeCounts,
		"generated_at":         analytics.GeneratedAt,
	})
}

func investigationIDParam(w http.ResponseWriter, r *http.Request) (types.InvestigationID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleError(r.Context(), w, goerr.Wrap(usecase.ErrInvalidInput, "invalid investigation ID"))
		return 0, false
	}
	return types.InvestigationID(id), true
}
