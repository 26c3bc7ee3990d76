package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wealthdesk/wealthdesk/internal/llm"
	"github.com/wealthdesk/wealthdesk/internal/result"
	"github.com/wealthdesk/wealthdesk/internal/schema"
	"github.com/wealthdesk/wealthdesk/internal/seed"
	"github.com/wealthdesk/wealthdesk/internal/store"
	"github.com/wealthdesk/wealthdesk/internal/store/relational"
	"github.com/wealthdesk/wealthdesk/internal/translate"
)

type scriptedModel struct {
	mu       sync.Mutex
	classify func() (string, error)
	document func() (string, error)
	sql      func() (string, error)
	narrate  func() (string, error)
	calls    []string
}

func (m *scriptedModel) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var step func() (string, error)
	var name string
	switch {
	case strings.Contains(prompt, "Reply with exactly one word"):
		name, step = "classify", m.classify
	case strings.HasSuffix(prompt, "MongoDB Filter:"):
		name, step = "document", m.document
	case strings.HasSuffix(prompt, "SQL Query:"):
		name, step = "sql", m.sql
	default:
		name, step = "narrate", m.narrate
	}
	m.calls = append(m.calls, name)
	if step == nil {
		return "", fmt.Errorf("%w: unexpected %s call", llm.ErrUpstreamUnavailable, name)
	}
	return step()
}

func reply(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func fail(err error) func() (string, error) {
	return func() (string, error) { return "", err }
}

type recordingExecutor struct {
	candidates []translate.Candidate
	table      result.Table
	err        error
	panicWith  any
}

func (e *recordingExecutor) Execute(_ context.Context, candidate translate.Candidate) (result.Table, error) {
	if e.panicWith != nil {
		panic(e.panicWith)
	}
	e.candidates = append(e.candidates, candidate)
	return e.table, e.err
}

func clientsTable() result.Table {
	return result.NewTable(
		[]string{"name", "risk", "age", "city", "preferences"},
		[][]any{{"Alice", "High", int64(45), "Mumbai", "tech, banking"}},
	)
}

func TestAskTopFivePortfoliosAgainstSeededFixture(t *testing.T) {
	ctx := context.Background()
	db, err := relational.Open(ctx, relational.DBConfig{Driver: "duckdb"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := seed.Relational(ctx, db, "duckdb"); err != nil {
		t.Fatalf("seed.Relational() error = %v", err)
	}

	model := &scriptedModel{}
	service := &Service{Model: model, Relational: relational.NewExecutor(db, 5*time.Second)}

	envelope := service.Ask(ctx, "Show me the top 5 portfolios")
	if len(model.calls) != 0 {
		t.Fatalf("model calls = %v, want none for a known intent", model.calls)
	}
	if envelope.Table == nil {
		t.Fatalf("envelope = %#v", envelope)
	}
	wantNames := []string{"Alice", "Grace", "Bob", "Jaya", "Heena"}
	wantValues := []float64{10000000, 9000000, 8500000, 8000000, 7500000}
	if len(envelope.Table.Rows) != len(wantNames) {
		t.Fatalf("rows = %d, want 5", len(envelope.Table.Rows))
	}
	for i, row := range envelope.Table.Rows {
		value, _ := result.Float(row[1])
		if row[0] != wantNames[i] || value != wantValues[i] {
			t.Fatalf("row %d = %#v, want %s %v", i, row, wantNames[i], wantValues[i])
		}
	}
	if envelope.Chart == nil || envelope.Chart.Label != "portfolio_value" || !reflect.DeepEqual(envelope.Chart.Labels, wantNames) {
		t.Fatalf("chart = %#v", envelope.Chart)
	}
	if envelope.Text != "Results for: Show me the top 5 portfolios" {
		t.Fatalf("Text = %q", envelope.Text)
	}
}

func TestAskRoutesToDocumentStore(t *testing.T) {
	model := &scriptedModel{
		classify: reply("mongo"),
		document: reply("```json\n{\"risk\": \"High\", \"age\": {$gt: 40}}\n```"),
	}
	document := &recordingExecutor{table: clientsTable()}
	relationalStore := &recordingExecutor{}
	service := &Service{Model: model, Document: document, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "high risk clients over 40")

	if len(relationalStore.candidates) != 0 {
		t.Fatal("relational store should not be called")
	}
	want := translate.DocumentFilter{"risk": "High", "age": map[string]any{"$gt": float64(40)}}
	if len(document.candidates) != 1 || !reflect.DeepEqual(document.candidates[0], want) {
		t.Fatalf("candidates = %#v", document.candidates)
	}
	if envelope.Table == nil || envelope.Table.Rows[0][0] != "Alice" {
		t.Fatalf("envelope = %#v", envelope)
	}
}

func TestAskSubstitutesFallbackForUnknownIdentifier(t *testing.T) {
	model := &scriptedModel{
		classify: reply("sql"),
		sql:      reply("SELECT account_id FROM transactions;"),
	}
	relationalStore := &recordingExecutor{table: result.NewTable([]string{"relationship_manager", "total_portfolio_value"}, [][]any{{"Rajiv Mehra", 34000000.0}})}
	service := &Service{Model: model, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "list all transactions")

	if len(relationalStore.candidates) != 1 {
		t.Fatalf("candidates = %#v", relationalStore.candidates)
	}
	if got := relationalStore.candidates[0].(translate.RelationalQuery).SQL; got != schema.PortfoliosFallbackSQL {
		t.Fatalf("SQL = %q, want fallback verbatim", got)
	}
	if envelope.Chart == nil || envelope.Chart.Label != "total_portfolio_value" {
		t.Fatalf("chart = %#v", envelope.Chart)
	}
}

func TestAskSubstitutesDocumentFallbackForUnknownField(t *testing.T) {
	model := &scriptedModel{
		classify: reply("MongoDB"),
		document: reply(`{"salary": {"$gt": 10}}`),
	}
	document := &recordingExecutor{table: clientsTable()}
	service := &Service{Model: model, Document: document}

	service.Ask(context.Background(), "clients earning over 10")

	if len(document.candidates) != 1 || !reflect.DeepEqual(document.candidates[0], translate.DocumentFilter{}) {
		t.Fatalf("candidates = %#v", document.candidates)
	}
}

func TestAskDefaultsToRelationalWhenClassificationFails(t *testing.T) {
	model := &scriptedModel{
		classify: fail(llm.ErrTimeout),
		sql:      reply("SELECT stock FROM portfolios;"),
	}
	relationalStore := &recordingExecutor{table: result.NewTable([]string{"stock"}, [][]any{{"TCS"}})}
	service := &Service{Model: model, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "which stocks")

	if len(relationalStore.candidates) != 1 || relationalStore.candidates[0].(translate.RelationalQuery).SQL != "SELECT stock FROM portfolios;" {
		t.Fatalf("candidates = %#v", relationalStore.candidates)
	}
	if envelope.Chart != nil {
		t.Fatalf("chart = %#v, want nil without a number column", envelope.Chart)
	}
}

func TestAskUsesFallbackWhenTranslationTimesOut(t *testing.T) {
	model := &scriptedModel{
		classify: reply("sql"),
		sql:      fail(llm.ErrTimeout),
	}
	relationalStore := &recordingExecutor{table: result.NewTable([]string{"relationship_manager"}, nil)}
	service := &Service{Model: model, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "slow question")

	if got := relationalStore.candidates[0].(translate.RelationalQuery).SQL; got != schema.PortfoliosFallbackSQL {
		t.Fatalf("SQL = %q", got)
	}
	if envelope.Text != result.NoResultsText || envelope.Table == nil || len(envelope.Table.Rows) != 0 {
		t.Fatalf("envelope = %#v", envelope)
	}
}

func TestAskStoreQueryFaultReturnsTextWithoutTable(t *testing.T) {
	model := &scriptedModel{
		classify: reply("sql"),
		sql:      reply("SELECT client_name FROM portfolios;"),
		narrate:  reply("Try asking about portfolio values by client."),
	}
	relationalStore := &recordingExecutor{err: store.ExecutionFailed("execute query", errors.New("Error 1146: Table 'wealth.portfolios' doesn't exist"))}
	service := &Service{Model: model, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "clients")

	if envelope.Table != nil || envelope.Chart != nil {
		t.Fatalf("envelope = %#v", envelope)
	}
	if !strings.HasPrefix(envelope.Text, queryFailedText) || !strings.HasSuffix(envelope.Text, "Try asking about portfolio values by client.") {
		t.Fatalf("Text = %q", envelope.Text)
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(body), `"table":null`) {
		t.Fatalf("body = %s", body)
	}
}

func TestAskStoreUnavailableWithoutNarrative(t *testing.T) {
	model := &scriptedModel{
		classify: reply("mongo"),
		document: reply(`{"city": "Pune"}`),
		narrate:  fail(llm.ErrUpstreamUnavailable),
	}
	document := &recordingExecutor{err: store.Unavailable("find", errors.New("server selection timeout"))}
	service := &Service{Model: model, Document: document}

	envelope := service.Ask(context.Background(), "clients in pune")

	if envelope.Text != storeUnavailableText || envelope.Table != nil {
		t.Fatalf("envelope = %#v", envelope)
	}
}

func TestAskPassesThroughDeclinedAnswer(t *testing.T) {
	model := &scriptedModel{
		classify: reply("sql"),
		sql:      reply("SELECT 'Sorry, question cannot be answered with current schema.';"),
	}
	relationalStore := &recordingExecutor{table: result.NewTable(
		[]string{"Sorry, question cannot be answered with current schema."},
		[][]any{{"Sorry, question cannot be answered with current schema."}},
	)}
	service := &Service{Model: model, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "what is the weather")

	if envelope.Text != "Sorry, question cannot be answered with current schema." || envelope.Table != nil {
		t.Fatalf("envelope = %#v", envelope)
	}
	for _, call := range model.calls {
		if call == "narrate" {
			t.Fatal("declined answers should not be narrated")
		}
	}
}

func TestAskKeepsSingleRowStartingWithSorry(t *testing.T) {
	model := &scriptedModel{
		classify: reply("sql"),
		sql:      reply("SELECT client_name FROM portfolios WHERE id = 9;"),
	}
	relationalStore := &recordingExecutor{table: result.NewTable(
		[]string{"client_name"},
		[][]any{{"Sorry Mehta"}},
	)}
	service := &Service{Model: model, Relational: relationalStore}

	envelope := service.Ask(context.Background(), "who owns portfolio 9")

	if envelope.Table == nil {
		t.Fatalf("expected a table for a real row, got %#v", envelope)
	}
	if got := envelope.Table.Rows[0][0]; got != "Sorry Mehta" {
		t.Fatalf("row = %#v", got)
	}
}

func TestDeclinedMatchesOnlyTheDeclineReply(t *testing.T) {
	tests := []struct {
		cell any
		want bool
	}{
		{cell: "Sorry, question cannot be answered with current schema.", want: true},
		{cell: "  sorry, question cannot be answered with current schema ", want: true},
		{cell: "Sorry Mehta", want: false},
		{cell: "Sorry, try again later.", want: false},
		{cell: int64(1), want: false},
	}
	for _, tt := range tests {
		table := result.NewTable([]string{"c"}, [][]any{{tt.cell}})
		if _, got := declined(table); got != tt.want {
			t.Fatalf("declined(%#v) = %v, want %v", tt.cell, got, tt.want)
		}
	}
}

func TestAskRecoversFromPanic(t *testing.T) {
	model := &scriptedModel{classify: reply("sql"), sql: reply("SELECT id FROM portfolios;")}
	service := &Service{Model: model, Relational: &recordingExecutor{panicWith: "boom"}}

	envelope := service.Ask(context.Background(), "anything")

	if envelope.Text != result.ApologyText || envelope.Table != nil || envelope.Chart != nil {
		t.Fatalf("envelope = %#v", envelope)
	}
}

func TestAskWithoutStoreReturnsApology(t *testing.T) {
	service := &Service{Model: &scriptedModel{classify: reply("mongo"), document: reply("{}")}}
	envelope := service.Ask(context.Background(), "clients")
	if !strings.HasPrefix(envelope.Text, storeUnavailableText) || envelope.Table != nil {
		t.Fatalf("envelope = %#v", envelope)
	}
}

func TestClassifyReply(t *testing.T) {
	tests := map[string]schema.StoreID{
		"mongo":                        schema.StoreDocument,
		"  MONGO\n":                    schema.StoreDocument,
		"The answer is: MongoDB":       schema.StoreDocument,
		"a document store":             schema.StoreDocument,
		"NoSQL":                        schema.StoreDocument,
		"sql":                          schema.StoreRelational,
		"":                             schema.StoreRelational,
		"I am not sure which to pick.": schema.StoreRelational,
	}
	for in, want := range tests {
		if got := ClassifyReply(in); got != want {
			t.Fatalf("ClassifyReply(%q) = %q, want %q", in, got, want)
		}
	}
}
