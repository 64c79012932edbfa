package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
	"github.com/payops-lab/mtnavigator/pkg/service/tabular"
	"github.com/payops-lab/mtnavigator/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// ProcessMessage runs a single message through the processing pipeline.
// In convert mode the message is converted to MX format, in extract mode its
// attributes are pulled out. Messages whose leading segment carries the "199"
// sub-type marker additionally get a full workcase classification merged into
// the attributes.
func (uc *UseCases) ProcessMessage(ctx context.Context, content string, mode types.ProcessingMode, wireID string) (*model.ProcessResult, error) {
	start := time.Now()

	if wireID == "" {
		wireID = fmt.Sprintf("MT-%d", start.Unix())
	}
	mode = mode.Normalize()

	result := &model.ProcessResult{
		WireID:     wireID,
		Mode:       mode,
		Attributes: map[string]any{},
	}

	switch mode {
	case types.ModeConvert:
		obj, fallback, err := uc.classifier.Convert(ctx, content)
		if err != nil {
			return nil, err
		}
		result.ConvertedContent = conversionPayload(obj)
		result.Notes = stringField(obj, "notes")
		result.Fallback = fallback

	case types.ModeExtract:
		obj, fallback, err := uc.classifier.Extract(ctx, content)
		if err != nil {
			return nil, err
		}
		if attrs, ok := obj["attributes"].(map[string]any); ok {
			result.Attributes = attrs
		}
		result.Notes = stringField(obj, "notes")
		result.Fallback = fallback
	}

	if isSubType199(content) {
		classification, err := uc.classifier.Classify(ctx, content)
		if err != nil {
			return nil, err
		}
		result.Classification = classification
		mergeClassification(result.Attributes, classification)
	}

	result.ProcessingTime = time.Since(start).Seconds()
	result.ProcessedAt = time.Now().UTC()

	return result, nil
}

// ClassifyMessage runs standalone workcase classification for a message
func (uc *UseCases) ClassifyMessage(ctx context.Context, content string) (*model.CaseClassification, error) {
	return uc.classifier.Classify(ctx, content)
}

// SaveResult persists a processing result as a Message record together with
// its attributes
func (uc *UseCases) SaveResult(ctx context.Context, result *model.ProcessResult, originalContent string, isBulk bool) (*model.Message, error) {
	now := time.Now().UTC()

	attrs := make(map[string]string, len(result.Attributes))
	for k, v := range result.Attributes {
		attrs[k] = attributeValue(v)
	}

	msg, err := uc.repo.Message().Create(ctx, &model.Message{
		WireID:           result.WireID,
		MessageType:      "MT",
		Content:          originalContent,
		ConvertedContent: result.ConvertedContent,
		Attributes:       attrs,
		ProcessingTime:   result.ProcessingTime,
		ProcessedAt:      &now,
		IsBulk:           isBulk,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save message", goerr.V("wire_id", result.WireID))
	}

	return msg, nil
}

// GetMessage retrieves a stored message by ID
func (uc *UseCases) GetMessage(ctx context.Context, id types.MessageID) (*model.Message, error) {
	msg, err := uc.repo.Message().Get(ctx, id)
	if err != nil {
		if isRepoNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "message not found", goerr.V("message_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get message", goerr.V("message_id", id))
	}
	return msg, nil
}

// ProcessBulk processes tabular rows with bounded parallelism. A failed row
// becomes an inline error entry; the other rows are unaffected. Results come
// back in input order.
func (uc *UseCases) ProcessBulk(ctx context.Context, rows []tabular.Row, mode types.ProcessingMode) ([]*model.BulkEntry, error) {
	batchID := uuid.New().String()
	logging.From(ctx).Info("bulk processing started",
		"batch_id", batchID, "rows", len(rows), "mode", mode)

	entries := make([]*model.BulkEntry, len(rows))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.bulkLimit)

	for i, row := range rows {
		eg.Go(func() error {
			entry := &model.BulkEntry{
				BatchID:     batchID,
				WireID:      row.WireID,
				ProcessedAt: time.Now().UTC(),
			}
			entries[i] = entry

			result, err := uc.ProcessMessage(ctx, row.Content, mode, row.WireID)
			if err != nil {
				logging.From(ctx).Warn("bulk row failed",
					"batch_id", batchID, "wire_id", row.WireID, "error", err)
				entry.Error = err.Error()
				return nil
			}

			if _, err := uc.SaveResult(ctx, result, row.Content, true); err != nil {
				entry.Error = err.Error()
				return nil
			}

			entry.Result = result
			entry.ProcessedAt = result.ProcessedAt
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "bulk processing aborted")
	}

	return entries, nil
}

// isSubType199 checks the leading segment for the MT199 sub-type marker
func isSubType199(content string) bool {
	head := content
	if len(head) > 20 {
		head = head[:20]
	}
	return strings.Contains(head, "199")
}

// conversionPayload pulls the converted document out of a conversion result,
// accepting either documented key
func conversionPayload(obj map[string]any) string {
	if s, ok := obj["mx_message"].(string); ok {
		return s
	}
	if s, ok := obj["camt110"].(string); ok {
		return s
	}
	return ""
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// mergeClassification flattens a workcase classification into the attribute
// map the same way extracted attributes are stored
func mergeClassification(attrs map[string]any, c *model.CaseClassification) {
	attrs["workcase_type"] = c.WorkcaseType.String()
	attrs["reasoning"] = c.Reasoning
	attrs["extracted_fields"] = c.ExtractedFields
	attrs["next_steps"] = c.NextSteps
	attrs["timeline"] = c.Timeline
	attrs["regulations"] = c.Regulations
	attrs["sla"] = c.SLA
	attrs["response_template"] = c.ResponseTemplate
}

// attributeValue renders an attribute for storage. Strings pass through,
// everything else is stored as JSON.
func attributeValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(encoded)
}
