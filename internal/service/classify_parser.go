package service

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
)

// Anomaly kinds logged by the classification parser. Anomalies are
// non-fatal: they are resolved via fallback, never raised as errors.
const (
	anomalyEmptyOutput   = "EMPTY_OUTPUT"
	anomalyParseFailed   = "JSON_PARSE_FAILED"
	anomalyInvalidFormat = "INVALID_FORMAT"
	anomalyPartialResult = "PARTIAL_RESULT"
	anomalyFallback      = "FALLBACK_TRIGGERED"
)

const (
	fallbackCategory = "other"
	previewLimit     = 300
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("```$")
)

// decodeFailure names why a batch's output could not be decoded.
// A nil failure means entries is a well-typed (possibly partial) list.
type decodeFailure struct {
	kind   string
	detail string
}

// decodeBatchOutput is the strict half of the parser: trim, strip an
// optional code fence, parse JSON, unwrap a {"results": [...]} envelope,
// and keep only well-typed entries. It either yields entries or a single
// named failure — no branch is silently absorbed.
func decodeBatchOutput(raw, idField string) ([]domain.CategoryResult, *decodeFailure) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, &decodeFailure{kind: anomalyEmptyOutput}
	}

	if strings.HasPrefix(text, "```") {
		text = leadingFence.ReplaceAllString(text, "")
		text = trailingFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &decodeFailure{kind: anomalyParseFailed, detail: preview(text)}
	}

	list, ok := parsed.([]interface{})
	if !ok {
		if envelope, isMap := parsed.(map[string]interface{}); isMap {
			list, ok = envelope["results"].([]interface{})
		}
	}
	if !ok {
		return nil, &decodeFailure{kind: anomalyInvalidFormat, detail: preview(text)}
	}

	var entries []domain.CategoryResult
	for _, item := range list {
		obj, isMap := item.(map[string]interface{})
		if !isMap {
			continue
		}
		id, idOK := obj[idField].(float64)
		category, catOK := obj["category"].(string)
		confidence, confOK := obj["confidence"].(float64)
		if !idOK || !catOK || !confOK {
			// malformed entry, dropped silently
			continue
		}
		entries = append(entries, domain.CategoryResult{
			ID:         int64(id),
			Category:   category,
			Confidence: confidence,
		})
	}

	return entries, nil
}

// repairBatchOutput is the total half of the parser: every id in the
// batch gets exactly one result. Decode failures replace the whole batch
// with the fallback; ids missing from a decoded list are filled
// individually. Both paths log an anomaly.
func repairBatchOutput(raw string, ids []int64, idField, batchID string) []domain.CategoryResult {
	entries, failure := decodeBatchOutput(raw, idField)
	if failure != nil {
		logAnomaly(failure.kind, batchID, "detail", failure.detail, "count", len(ids))
		logAnomaly(anomalyFallback, batchID, "reason", failure.kind, "count", len(ids))
		return fallbackResults(ids)
	}

	byID := make(map[int64]domain.CategoryResult, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		logAnomaly(anomalyPartialResult, batchID,
			"total", len(ids), "missing_count", len(missing), "missing_ids", missing)
	}

	results := make([]domain.CategoryResult, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			results = append(results, r)
			continue
		}
		results = append(results, fallbackResult(id))
	}
	return results
}

// fallbackResults maps every id to the fallback verdict.
func fallbackResults(ids []int64) []domain.CategoryResult {
	results := make([]domain.CategoryResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, fallbackResult(id))
	}
	return results
}

func fallbackResult(id int64) domain.CategoryResult {
	return domain.CategoryResult{ID: id, Category: fallbackCategory, Confidence: 0}
}

// logAnomaly records a classification irregularity. The pipeline carries
// on; the only user-visible trace is "other"/0 entries in the results.
func logAnomaly(kind, batchID string, attrs ...interface{}) {
	args := append([]interface{}{"kind", kind, "batch_id", batchID}, attrs...)
	slog.Warn("classification anomaly", args...)
}

// preview truncates model output for logging.
func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit]
	}
	return s
}
