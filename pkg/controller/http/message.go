package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/service/tabular"
	"github.com/payops-lab/mtnavigator/pkg/usecase"
	"github.com/payops-lab/mtnavigator/pkg/utils/safe"
)

type processMessageRequest struct {
	Content string `json:"content"`
	Mode    string `json:"mode"`
	WireID  string `json:"message_id"`
}

type processResultResponse struct {
	WireID           string                  `json:"message_id"`
	Mode             string                  `json:"mode"`
	ConvertedContent string                  `json:"mx_message,omitempty"`
	Attributes       map[string]any          `json:"attributes"`
	Notes            string                  `json:"notes,omitempty"`
	Classification   *classificationResponse `json:"classification,omitempty"`
	Fallback         bool                    `json:"fallback"`
	ProcessingTime   float64                 `json:"processing_time"`
	ProcessedAt      time.Time               `json:"processed_at"`
	StoredMessageID  int64                   `json:"db_id,omitempty"`
}

type classificationResponse struct {
	WorkcaseType     string                `json:"workcase_type"`
	Reasoning        string                `json:"reasoning"`
	ExtractedFields  map[string]any        `json:"extracted_fields"`
	NextSteps        []string              `json:"next_steps"`
	Timeline         []model.TimelineEntry `json:"timeline"`
	Regulations      []model.Regulation    `json:"regulations"`
	SLA              model.SLASchedule     `json:"sla"`
	ResponseTemplate string                `json:"response_template"`
	Fallback         bool                  `json:"fallback"`
}

func toProcessResultResponse(result *model.ProcessResult) *processResultResponse {
	resp := &processResultResponse{
		WireID:           result.WireID,
		Mode:             result.Mode.String(),
		ConvertedContent: result.ConvertedContent,
		Attributes:       result.Attributes,
		Notes:            result.Notes,
		Fallback:         result.Fallback,
		ProcessingTime:   result.ProcessingTime,
		ProcessedAt:      result.ProcessedAt,
	}
	if result.Classification != nil {
		resp.Classification = toClassificationResponse(result.Classification)
	}
	return resp
}

func toClassificationResponse(c *model.CaseClassification) *classificationResponse {
	return &classificationResponse{
		WorkcaseType:     c.WorkcaseType.String(),
		Reasoning:        c.Reasoning,
		ExtractedFields:  c.ExtractedFields,
		NextSteps:        c.NextSteps,
		Timeline:         c.Timeline,
		Regulations:      c.Regulations,
		SLA:              c.SLA,
		ResponseTemplate: c.ResponseTemplate,
		Fallback:         c.Fallback,
	}
}

func (s *Server) handleProcessMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req processMessageRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}
	if req.Content == "" {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "content is required"))
		return
	}

	mode := types.ProcessingMode(req.Mode).Normalize()

	result, err := s.uc.ProcessMessage(ctx, req.Content, mode, req.WireID)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	msg, err := s.uc.SaveResult(ctx, result, req.Content, false)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	resp := toProcessResultResponse(result)
	resp.StoredMessageID = int64(msg.ID)
	respondJSON(ctx, w, http.StatusOK, resp)
}

func (s *Server) handleAnalyzeMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &req); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid request body"))
		return
	}
	if req.Content == "" {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "content is required"))
		return
	}

	classification, err := s.uc.ClassifyMessage(ctx, req.Content)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toClassificationResponse(classification))
}

type bulkEntryResponse struct {
	WireID      string                 `json:"message_id"`
	Result      *processResultResponse `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	ProcessedAt time.Time              `json:"processed_at"`
}

func (s *Server) handleProcessBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid multipart form"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "file is required"))
		return
	}
	defer safe.Close(ctx, file)

	rows, err := tabular.LoadCSV(file)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	mode := types.ProcessingMode(r.FormValue("mode")).Normalize()

	entries, err := s.uc.ProcessBulk(ctx, rows, mode)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	batchID := ""
	resp := make([]*bulkEntryResponse, 0, len(entries))
	for _, entry := range entries {
		batchID = entry.BatchID
		item := &bulkEntryResponse{
			WireID:      entry.WireID,
			Error:       entry.Error,
			ProcessedAt: entry.ProcessedAt,
		}
		if entry.Result != nil {
			item.Result = toProcessResultResponse(entry.Result)
		}
		resp = append(resp, item)
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"batch_id": batchID,
		"total":    len(resp),
		"results":  resp,
	})
}

type messageResponse struct {
	ID               int64             `json:"id"`
	WireID           string            `json:"message_id"`
	MessageType      string            `json:"message_type"`
	Content          string            `json:"content"`
	ConvertedContent string            `json:"converted_content,omitempty"`
	Attributes       map[string]string `json:"attributes"`
	ProcessingTime   float64           `json:"processing_time"`
	ProcessedAt      *time.Time        `json:"processed_at,omitempty"`
	IsBulk           bool              `json:"is_bulk"`
	CreatedAt        time.Time         `json:"created_at"`
}

func toMessageResponse(msg *model.Message) *messageResponse {
	return &messageResponse{
		ID:               int64(msg.ID),
		WireID:           msg.WireID,
		MessageType:      msg.MessageType,
		Content:          msg.Content,
		ConvertedContent: msg.ConvertedContent,
		Attributes:       msg.Attributes,
		ProcessingTime:   msg.ProcessingTime,
		ProcessedAt:      msg.ProcessedAt,
		IsBulk:           msg.IsBulk,
		CreatedAt:        msg.CreatedAt,
	}
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		handleError(ctx, w, goerr.Wrap(usecase.ErrInvalidInput, "invalid message ID"))
		return
	}

	msg, err := s.uc.GetMessage(ctx, types.MessageID(id))
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toMessageResponse(msg))
}
