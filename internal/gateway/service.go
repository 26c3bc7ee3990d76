package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/wealthdesk/wealthdesk/internal/llm"
	"github.com/wealthdesk/wealthdesk/internal/observability"
	"github.com/wealthdesk/wealthdesk/internal/prompt"
	"github.com/wealthdesk/wealthdesk/internal/result"
	"github.com/wealthdesk/wealthdesk/internal/schema"
	"github.com/wealthdesk/wealthdesk/internal/store"
	"github.com/wealthdesk/wealthdesk/internal/translate"
)

// Executor runs a validated candidate against one store.
type Executor interface {
	Execute(ctx context.Context, candidate translate.Candidate) (result.Table, error)
}

// Service answers free-text questions. Ask never fails: every fault ends in
// a fallback query or an apology envelope.
type Service struct {
	Model      llm.Completer
	Document   Executor
	Relational Executor
	Logger     *slog.Logger
	Clock      func() time.Time
}

var documentReplyPattern = regexp.MustCompile(`\b(mongo|mongodb|document|nosql)\b`)

func (s *Service) Ask(ctx context.Context, question string) (envelope result.Envelope) {
	question = strings.TrimSpace(question)

	defer func() {
		if recovered := recover(); recovered != nil {
			s.log(ctx, slog.LevelError, "question pipeline panicked", slog.Any("panic", recovered))
			observability.IncrementApology(string(CauseInternal))
			envelope = result.Apology("")
		}
	}()

	switch outcome := s.answer(ctx, question).(type) {
	case Structured:
		return outcome.Envelope
	case PlainText:
		observability.IncrementApology(string(outcome.Cause))
		if outcome.Cause == CauseDeclined {
			return result.Text(outcome.Text)
		}
		return result.Text(s.narrate(ctx, question, outcome.Text))
	default:
		panic(fmt.Sprintf("unhandled outcome %T", outcome))
	}
}

func (s *Service) answer(ctx context.Context, question string) Outcome {
	if statement, ok := KnownIntent(question); ok {
		observability.ObserveClassification(string(schema.StoreRelational), "intent")
		s.log(ctx, slog.LevelInfo, "known intent matched", slog.String("sql", statement))
		return s.execute(ctx, question, s.Relational, translate.RelationalQuery{SQL: statement})
	}

	descriptor := s.Classify(ctx, question)
	observability.ObserveClassification(string(descriptor.StoreID), "model")

	if descriptor.StoreID == schema.StoreDocument {
		return s.execute(ctx, question, s.Document, s.translateQuestion(ctx, question, descriptor))
	}
	return s.execute(ctx, question, s.Relational, s.translateQuestion(ctx, question, descriptor))
}

// Classify picks the store for question. Any reply that does not name the
// document store, and any model fault, selects the relational store.
func (s *Service) Classify(ctx context.Context, question string) *schema.Descriptor {
	reply, err := s.complete(ctx, prompt.TaskClassify, prompt.Build(prompt.TaskClassify, question, nil))
	if err != nil {
		s.log(ctx, slog.LevelWarn, "classification failed, using relational store", slog.Any("error", err))
		return schema.Portfolios()
	}
	return schema.ForStore(ClassifyReply(reply))
}

func ClassifyReply(reply string) schema.StoreID {
	if documentReplyPattern.MatchString(strings.ToLower(reply)) {
		return schema.StoreDocument
	}
	return schema.StoreRelational
}

// translateQuestion asks the model for a native query and validates it. A model
// fault or a rejected query both yield the descriptor's fallback.
func (s *Service) translateQuestion(ctx context.Context, question string, descriptor *schema.Descriptor) translate.Candidate {
	task := prompt.TaskTranslateRelational
	if descriptor.StoreID == schema.StoreDocument {
		task = prompt.TaskTranslateDocument
	}

	raw, err := s.complete(ctx, task, prompt.Build(task, question, descriptor))
	if err != nil {
		s.log(ctx, slog.LevelWarn, "translation failed, using fallback query",
			slog.String("store", string(descriptor.StoreID)),
			slog.Any("error", err),
		)
		observability.ObserveRejection(string(descriptor.StoreID), modelOutcome(err))
		return translate.Fallback(descriptor)
	}

	var candidate translate.Candidate
	if descriptor.StoreID == schema.StoreDocument {
		candidate, err = translate.Document(raw, descriptor)
	} else {
		candidate, err = translate.Relational(raw, descriptor)
	}
	if err != nil {
		s.log(ctx, slog.LevelWarn, "model output rejected, using fallback query",
			slog.String("store", string(descriptor.StoreID)),
			slog.String("reason", string(translate.ReasonOf(err))),
			slog.Any("error", err),
		)
		observability.ObserveRejection(string(descriptor.StoreID), string(translate.ReasonOf(err)))
		return translate.Fallback(descriptor)
	}
	return candidate
}

func (s *Service) execute(ctx context.Context, question string, executor Executor, candidate translate.Candidate) Outcome {
	if executor == nil {
		return PlainText{Text: storeUnavailableText, Cause: CauseStoreUnavailable}
	}

	start := s.now()
	table, err := executor.Execute(ctx, candidate)
	elapsed := s.now().Sub(start)

	storeID := string(candidate.Store())
	switch {
	case err == nil:
		observability.ObserveStoreExecution(storeID, "ok", elapsed)
	case errors.Is(err, store.ErrStoreUnavailable):
		observability.ObserveStoreExecution(storeID, "unavailable", elapsed)
		s.log(ctx, slog.LevelError, "store unavailable", slog.String("store", storeID), slog.Any("error", err))
		return PlainText{Text: storeUnavailableText, Cause: CauseStoreUnavailable}
	default:
		observability.ObserveStoreExecution(storeID, "failed", elapsed)
		s.log(ctx, slog.LevelError, "store query failed", slog.String("store", storeID), slog.Any("error", err))
		return PlainText{Text: queryFailedText, Cause: CauseQueryFailed}
	}

	if text, ok := declined(table); ok {
		return PlainText{Text: text, Cause: CauseDeclined}
	}
	return Structured{Envelope: result.Shape(table, question)}
}

// declined spots the single-cell row the relational prompt asks the model to
// select when it cannot answer. Only that sentence counts, give or take case,
// surrounding space and the final period.
func declined(table result.Table) (string, bool) {
	if len(table.Columns) != 1 || len(table.Rows) != 1 {
		return "", false
	}
	text, ok := table.Rows[0][0].(string)
	if !ok || !strings.EqualFold(trimPeriod(text), trimPeriod(prompt.DeclineReply)) {
		return "", false
	}
	return text, true
}

func trimPeriod(text string) string {
	return strings.TrimSuffix(strings.TrimSpace(text), ".")
}

// narrate appends a brief model answer to apology text. If the model fails
// too, the apology stands alone.
func (s *Service) narrate(ctx context.Context, question, apology string) string {
	reply, err := s.complete(ctx, prompt.TaskNarrate, prompt.Build(prompt.TaskNarrate, question, nil))
	reply = strings.TrimSpace(reply)
	if err != nil || reply == "" {
		return apology
	}
	return apology + "\n\n" + reply
}

func (s *Service) complete(ctx context.Context, task prompt.Task, text string) (string, error) {
	if s.Model == nil {
		return "", fmt.Errorf("%w: no model configured", llm.ErrUpstreamUnavailable)
	}
	start := s.now()
	reply, err := s.Model.Complete(ctx, text)
	observability.ObserveModelCall(string(task), modelOutcome(err), s.now().Sub(start))
	if err != nil {
		return "", fmt.Errorf("%s: %w", task, err)
	}
	return reply, nil
}

func modelOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, llm.ErrTimeout):
		return "timeout"
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	default:
		return "error"
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if s.Logger == nil {
		return
	}
	s.Logger.LogAttrs(ctx, level, msg, attrs...)
}
