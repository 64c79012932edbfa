package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/payops-lab/mtnavigator/pkg/controller/http"
	"github.com/payops-lab/mtnavigator/pkg/policy"
	"github.com/payops-lab/mtnavigator/pkg/repository/memory"
	"github.com/payops-lab/mtnavigator/pkg/service/classifier"
	"github.com/payops-lab/mtnavigator/pkg/service/llm"
	"github.com/payops-lab/mtnavigator/pkg/usecase"
)

// newTestServer wires a server against the in-memory repository and a mock
// generative backend that answers each prompt kind with canned JSON
func newTestServer(t *testing.T) *httpctrl.Server {
	t.Helper()

	mock := &llm.Mock{
		CompleteFn: func(ctx context.Context, prompt string) (string, error) {
			switch {
			case strings.Contains(prompt, "suggest investigation actions"):
				return `[{"type": "information_request", "description": "Request confirmation",
					"priority": "high", "suggested_days": 5}]`, nil
			case strings.Contains(prompt, "failed Straight Through Processing"):
				return `{"workcase_type": "NON_RECEIPT", "reasoning": "missing funds"}`, nil
			case strings.Contains(prompt, "Extract all important attributes"):
				return `{"attributes": {"sender": "BANKUS33"}, "notes": ""}`, nil
			case strings.Contains(prompt, "customer notification email"):
				return `{"subject": "Update", "body": "We are on it."}`, nil
			default:
				return `{"mx_message": "<Document/>", "notes": ""}`, nil
			}
		},
	}

	cls, err := classifier.New(mock, policy.New())
	gt.NoError(t, err).Required()

	return httpctrl.New(usecase.New(memory.New(), cls))
}

func doJSON(t *testing.T, srv http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reqBody bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&reqBody).Encode(body)).Required()
	}

	req := httptest.NewRequest(method, path, &reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded)).Required()
	}
	return rec, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	rec, body := doJSON(t, srv, http.MethodGet, "/health", nil)

	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, body["status"]).Equal("ok")
}

func TestProcessMessageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("processes and persists a message", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodPost, "/api/messages/process", map[string]any{
			"content":    "{1:F01BANKUS33}",
			"mode":       "convert",
			"message_id": "MT-HTTP-1",
		})

		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["message_id"]).Equal("MT-HTTP-1")
		gt.Value(t, body["mx_message"]).Equal("<Document/>")
		gt.Value(t, body["fallback"]).Equal(false)
		gt.Value(t, body["db_id"].(float64) > 0).Equal(true)

		dbID := strconv.Itoa(int(body["db_id"].(float64)))
		rec, stored := doJSON(t, srv, http.MethodGet, "/api/messages/"+dbID, nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, stored["content"]).Equal("{1:F01BANKUS33}")
	})

	t.Run("missing content is a bad request", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodPost, "/api/messages/process", map[string]any{
			"mode": "convert",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
		gt.Value(t, body["error"]).NotEqual("")
	})

	t.Run("missing message is not found", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/messages/9999", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")
		gt.Value(t, body["error"]).NotEqual("")
	})
}

func TestAnalyzeMessageEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/messages/analyze", map[string]any{
		"content": "{1:F01}{2:I199}",
	})

	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, body["workcase_type"]).Equal("NON_RECEIPT")
	gt.Value(t, body["response_template"]).NotEqual("")
}

func TestProcessBulkEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "batch.csv")
	gt.NoError(t, err).Required()
	_, err = part.Write([]byte("messageId,message\nMT-C1,first\nMT-C2,second\n"))
	gt.NoError(t, err).Required()
	gt.NoError(t, mw.WriteField("mode", "convert")).Required()
	gt.NoError(t, mw.Close()).Required()

	req := httptest.NewRequest(http.MethodPost, "/api/messages/bulk", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var body map[string]any
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
	gt.Number(t, int(body["total"].(float64))).Equal(2)
	gt.Value(t, body["batch_id"]).NotEqual("")
	results := body["results"].([]any)
	gt.Number(t, len(results)).Equal(2)
}

func TestInvestigationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	// Store a message first so an investigation can reference it
	_, processed := doJSON(t, srv, http.MethodPost, "/api/messages/process", map[string]any{
		"content":    "{1:F01BANKUS33}",
		"mode":       "extract",
		"message_id": "MT-INV-1",
	})
	messageID := int64(processed["db_id"].(float64))

	rec, created := doJSON(t, srv, http.MethodPost, "/api/investigations/", map[string]any{
		"message_id":    messageID,
		"priority":      "high",
		"customer_info": map[string]any{"name": "ACME Corp"},
	})
	gt.Number(t, rec.Code).Equal(http.StatusCreated)
	gt.Value(t, created["status"]).Equal("open")
	reference := created["reference_number"].(string)
	invID := strconv.Itoa(int(created["id"].(float64)))

	t.Run("get by ID returns detail with actions", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/investigations/"+invID, nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		actions := body["actions"].([]any)
		gt.Number(t, len(actions)).Equal(1)
		message := body["message"].(map[string]any)
		gt.Value(t, message["message_id"]).Equal("MT-INV-1")
	})

	t.Run("get by reference", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/investigations/reference/"+reference, nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		inv := body["investigation"].(map[string]any)
		gt.Value(t, inv["reference_number"]).Equal(reference)
	})

	t.Run("list with filters", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/investigations/?priority=high", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Number(t, int(body["total"].(float64))).Equal(1)

		rec, _ = doJSON(t, srv, http.MethodGet, "/api/investigations/?status=nonsense", nil)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("add action and update its status", func(t *testing.T) {
		rec, action := doJSON(t, srv, http.MethodPost, "/api/investigations/"+invID+"/actions", map[string]any{
			"action_type": "customer_notification",
			"description": "Notify the customer",
		})
		gt.Number(t, rec.Code).Equal(http.StatusCreated)
		actionID := strconv.Itoa(int(action["id"].(float64)))

		rec, updated := doJSON(t, srv, http.MethodPut, "/api/actions/"+actionID+"/status", map[string]any{
			"status": "completed",
			"notes":  "customer informed",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, updated["status"]).Equal("completed")
		gt.Value(t, updated["notes"]).Equal("customer informed")

		rec, _ = doJSON(t, srv, http.MethodPut, "/api/actions/"+actionID+"/status", map[string]any{
			"status": "done",
		})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("notification generation", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodPost, "/api/investigations/"+invID+"/notification", map[string]any{
			"notification_type": "status_update",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["subject"]).Equal("Update")
		gt.Value(t, body["reference_number"]).Equal(reference)
	})

	t.Run("resolve then close", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodPost, "/api/investigations/"+invID+"/resolve", map[string]any{
			"notes": "funds located",
		})
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["status"]).Equal("resolved")
		gt.Value(t, body["resolution_notes"]).Equal("funds located")

		rec, body = doJSON(t, srv, http.MethodPost, "/api/investigations/"+invID+"/close", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["status"]).Equal("closed")
	})

	t.Run("analytics summary", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/investigations/analytics/summary", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Number(t, int(body["total_investigations"].(float64))).Equal(1)
		statusCounts := body["status_counts"].(map[string]any)
		gt.Number(t, int(statusCounts["closed"].(float64))).Equal(1)
	})

	t.Run("delete removes the investigation", func(t *testing.T) {
		rec, body := doJSON(t, srv, http.MethodDelete, "/api/investigations/"+invID, nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, body["status"]).Equal("deleted")

		rec, _ = doJSON(t, srv, http.MethodGet, "/api/investigations/"+invID, nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("missing investigation is not found", func(t *testing.T) {
		rec, _ := doJSON(t, srv, http.MethodPost, "/api/investigations/", map[string]any{
			"message_id": 9999,
		})
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}
