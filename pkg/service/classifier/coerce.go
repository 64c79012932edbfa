package classifier

import (
	"fmt"
	"strconv"

	"github.com/payops-lab/mtnavigator/pkg/domain/model"
	"github.com/payops-lab/mtnavigator/pkg/domain/types"
)

// Coercions for duck-typed JSON values. Generative output honors the
// documented keys most of the time, but value types drift (numbers as
// strings, single values where lists are expected), so every read goes
// through one of these.

func asString(v any, def string) string {
	switch s := v.(type) {
	case string:
		if s == "" {
			return def
		}
		return s
	case nil:
		return def
	case float64, int, int64, bool:
		return fmt.Sprintf("%v", s)
	default:
		return def
	}
}

func asInt(v any, def int) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}

func asPriority(v any) types.Priority {
	p, err := types.ParsePriority(asString(v, "medium"))
	if err != nil {
		return types.PriorityMedium
	}
	return p
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func asStringSlice(v any) []string {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s := asString(entry, ""); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asTimeline(v any) []model.TimelineEntry {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.TimelineEntry, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.TimelineEntry{
			Date:   asString(obj["date"], ""),
			Action: asString(obj["action"], ""),
			Status: asString(obj["status"], ""),
		})
	}
	return out
}

func asRegulations(v any) []model.Regulation {
	entries, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]model.Regulation, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, model.Regulation{
			Name:        asString(obj["name"], ""),
			Description: asString(obj["description"], ""),
			Reference:   asString(obj["reference"], ""),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asSLA(v any) (model.SLASchedule, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return model.SLASchedule{}, false
	}
	return model.SLASchedule{
		Acknowledgment:  asInt(obj["acknowledgment"], 0),
		InitialResearch: asInt(obj["initial_research"], 0),
		Correspondence:  asInt(obj["correspondence"], 0),
		FollowUp:        asInt(obj["follow_up"], 0),
		Resolution:      asInt(obj["resolution"], 0),
	}, true
}
