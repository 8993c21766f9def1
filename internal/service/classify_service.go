package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/domain"
	"github.com/arturoeanton/go-inbox-classifier-ollama/internal/port"
)

// classifyBatchSize is how many items share one model invocation.
const classifyBatchSize = 10

// ClassifyService is the classification engine: it batches uncategorized
// rows, invokes the model once per batch, validates the output, and writes
// the repaired results back. Malformed model output never fails a run —
// affected items fall back to category "other" with confidence 0.
type ClassifyService struct {
	ai     port.AIProvider
	mails  port.MailStore
	events port.EventStore
}

// NewClassifyService creates a new classification service.
func NewClassifyService(ai port.AIProvider, mails port.MailStore, events port.EventStore) *ClassifyService {
	return &ClassifyService{ai: ai, mails: mails, events: events}
}

// ClassifyMail classifies all uncategorized mail rows for the user and
// returns the number of rows updated.
func (s *ClassifyService) ClassifyMail(ctx context.Context, userID int64) (int64, error) {
	items, err := s.mails.UncategorizedMail(ctx, userID)
	if err != nil {
		return 0, err
	}

	results, err := s.classifyMailItems(ctx, items)
	if err != nil {
		return 0, err
	}

	return s.mails.ApplyMailCategories(ctx, userID, results)
}

// ClassifyEvents classifies all uncategorized event rows for the user and
// returns the number of rows updated.
func (s *ClassifyService) ClassifyEvents(ctx context.Context, userID int64) (int64, error) {
	items, err := s.events.UncategorizedEvents(ctx, userID)
	if err != nil {
		return 0, err
	}

	results, err := s.classifyEventItems(ctx, items)
	if err != nil {
		return 0, err
	}

	return s.events.ApplyEventCategories(ctx, userID, results)
}

// mailPromptRow is the projection of a mail row embedded in the prompt.
type mailPromptRow struct {
	ID         int64      `json:"id"`
	Subject    string     `json:"subject"`
	Sender     string     `json:"sender"`
	Snippet    string     `json:"snippet"`
	ReceivedAt *time.Time `json:"received_at"`
}

// eventPromptRow is the projection of an event row embedded in the prompt.
type eventPromptRow struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	AllDay      bool       `json:"all_day"`
}

// classifyMailItems runs the mail pipeline over an in-memory item list.
// It is a pure fetch→transform: the store is never touched.
func (s *ClassifyService) classifyMailItems(ctx context.Context, items []domain.MailItem) ([]domain.CategoryResult, error) {
	batches := make([]promptBatch, 0, (len(items)+classifyBatchSize-1)/classifyBatchSize)
	for start := 0; start < len(items); start += classifyBatchSize {
		end := start + classifyBatchSize
		if end > len(items) {
			end = len(items)
		}

		batch := items[start:end]
		rows := make([]mailPromptRow, 0, len(batch))
		ids := make([]int64, 0, len(batch))
		for _, m := range batch {
			rows = append(rows, mailPromptRow{
				ID: m.ID, Subject: m.Subject, Sender: m.Sender,
				Snippet: m.Snippet, ReceivedAt: m.ReceivedAt,
			})
			ids = append(ids, m.ID)
		}

		data, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("marshal mail batch: %w", err)
		}

		batches = append(batches, promptBatch{
			prompt: buildPrompt(mailPromptSpec, domain.MailCategories, len(batch), string(data)),
			ids:    ids,
		})
	}

	return s.runBatches(ctx, batches, mailPromptSpec.idField)
}

// classifyEventItems runs the event pipeline over an in-memory item list.
func (s *ClassifyService) classifyEventItems(ctx context.Context, items []domain.CalendarItem) ([]domain.CategoryResult, error) {
	batches := make([]promptBatch, 0, (len(items)+classifyBatchSize-1)/classifyBatchSize)
	for start := 0; start < len(items); start += classifyBatchSize {
		end := start + classifyBatchSize
		if end > len(items) {
			end = len(items)
		}

		batch := items[start:end]
		rows := make([]eventPromptRow, 0, len(batch))
		ids := make([]int64, 0, len(batch))
		for _, ev := range batch {
			rows = append(rows, eventPromptRow{
				ID: ev.ID, Title: ev.Title, Description: ev.Description,
				Location: ev.Location, StartTime: ev.StartTime,
				EndTime: ev.EndTime, AllDay: ev.AllDay,
			})
			ids = append(ids, ev.ID)
		}

		data, err := json.Marshal(rows)
		if err != nil {
			return nil, fmt.Errorf("marshal event batch: %w", err)
		}

		batches = append(batches, promptBatch{
			prompt: buildPrompt(eventPromptSpec, domain.EventCategories, len(batch), string(data)),
			ids:    ids,
		})
	}

	return s.runBatches(ctx, batches, eventPromptSpec.idField)
}

// promptBatch pairs one prompt with the ids it must account for.
type promptBatch struct {
	prompt string
	ids    []int64
}

// runBatches invokes the model once per batch, all batches concurrently,
// and joins the repaired results in submission order. Only transport
// errors from the model API abort the run; malformed output is absorbed
// by the parser's fallback.
func (s *ClassifyService) runBatches(ctx context.Context, batches []promptBatch, idField string) ([]domain.CategoryResult, error) {
	type batchResult struct {
		results []domain.CategoryResult
		err     error
	}

	out := make([]batchResult, len(batches))
	var wg sync.WaitGroup

	for i, b := range batches {
		wg.Add(1)
		go func(i int, b promptBatch) {
			defer wg.Done()
			batchID := uuid.NewString()

			raw, err := s.ai.Generate(ctx, b.prompt)
			if err != nil {
				out[i] = batchResult{err: fmt.Errorf("model invocation: %w", err)}
				return
			}

			out[i] = batchResult{results: repairBatchOutput(raw, b.ids, idField, batchID)}
		}(i, b)
	}
	wg.Wait()

	results := make([]domain.CategoryResult, 0, len(batches)*classifyBatchSize)
	for _, r := range out {
		if r.err != nil {
			return nil, r.err
		}
		results = append(results, r.results...)
	}
	return results, nil
}

// promptSpec carries the wording that differs between the two item kinds.
type promptSpec struct {
	system    string // "email" or "event"
	idField   string // key the model must echo per entry
	dataLabel string // label above the serialized rows
}

var (
	mailPromptSpec  = promptSpec{system: "email", idField: "mail_id", dataLabel: "Email"}
	eventPromptSpec = promptSpec{system: "event", idField: "event_id", dataLabel: "Event"}
)

// buildPrompt assembles the deterministic classification prompt: the
// closed category list, formatting rules forbidding prose and markdown,
// and the batch's serialized rows.
func buildPrompt(spec promptSpec, categories []string, count int, data string) string {
	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, "- "+c)
	}
	categoryText := strings.Join(lines, "\n")

	return fmt.Sprintf(`
You are an %s classification system.
You do NOT chat.
You do NOT explain.
You do NOT justify.
You ONLY return valid JSON.

Choose ONE category from the list below:
%s

Rules:
- Use ONLY the categories above
- Confidence must be a number between 0 and 1
- If none apply, use "other"
- Return ONLY JSON
- %s count: %d

IMPORTANT:
- Do NOT use markdown
- Do NOT wrap the JSON in `+"```json"+`
- Output MUST be raw JSON

%s data:
%s

Return this exact JSON format:
[
  {
    "%s": number,
    "category": string,
    "confidence": number
  }
]
`, spec.system, categoryText, spec.dataLabel, count, spec.dataLabel, data, spec.idField)
}
