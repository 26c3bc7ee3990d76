package translate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

func TestCleanStripsFencesAndLabels(t *testing.T) {
	tests := []struct {
		fenced string
		plain  string
	}{
		{fenced: "```sql\nSELECT stock FROM portfolios;\n```", plain: "SELECT stock FROM portfolios;"},
		{fenced: "```json\n{\"risk\": \"High\"}\n```", plain: `{"risk": "High"}`},
		{fenced: "```\n{\"city\": \"Pune\"}\n```", plain: `{"city": "Pune"}`},
		{fenced: "SQL Query: ```SQL\nSELECT id FROM portfolios;```", plain: "SQL Query: SELECT id FROM portfolios;"},
		{fenced: "MongoDB Filter:\n```json {\"age\": 40}```", plain: `{"age": 40}`},
	}
	for _, tt := range tests {
		if got, want := Clean(tt.fenced), Clean(tt.plain); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", tt.fenced, got, want)
		}
	}
	if got := Clean("sql SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("Clean() = %q", got)
	}
}

func TestRelationalExtractsFirstStatement(t *testing.T) {
	raw := "Here is the query:\nselect client_name,\n  portfolio_value\nfrom portfolios\norder by portfolio_value desc;\nSELECT 2;"
	got, err := Relational(raw, schema.Portfolios())
	if err != nil {
		t.Fatalf("Relational() error = %v", err)
	}
	want := "select client_name,\n  portfolio_value\nfrom portfolios\norder by portfolio_value desc;"
	if got.SQL != want {
		t.Fatalf("SQL = %q, want %q", got.SQL, want)
	}
}

func TestRelationalAcceptsAliasesAndLiterals(t *testing.T) {
	raw := "SELECT relationship_manager AS rm, SUM(portfolio_value) AS total FROM portfolios WHERE stock = 'HDFC Bank' GROUP BY relationship_manager ORDER BY total DESC LIMIT 3;"
	got, err := Relational(raw, schema.Portfolios())
	if err != nil {
		t.Fatalf("Relational() error = %v", err)
	}
	if got.SQL != raw {
		t.Fatalf("SQL = %q", got.SQL)
	}
}

func TestRelationalAcceptsStatementWithoutSemicolon(t *testing.T) {
	got, err := Relational("SELECT COUNT(*) FROM portfolios", schema.Portfolios())
	if err != nil {
		t.Fatalf("Relational() error = %v", err)
	}
	if got.SQL != "SELECT COUNT(*) FROM portfolios" {
		t.Fatalf("SQL = %q", got.SQL)
	}
}

func TestRelationalRejectsUnknownIdentifiers(t *testing.T) {
	tests := []string{
		"SELECT client_name FROM transactions;",
		"SELECT password FROM portfolios;",
		"SELECT p.client_name FROM portfolios p;",
		`SELECT "secret" FROM portfolios;`,
		"SELECT client_name FROM portfolios -- trailing\nJOIN accounts;",
		"SELECT '--', password FROM users;",
		"SELECT '/*', password FROM users, '*/';",
		"SELECT password AS password FROM users AS users;",
		"SELECT * FROM information_schema.tables AS information_schema, (SELECT 1) AS tables;",
		`SELECT 'a\'', password FROM users;`,
		"SELECT \"--\", password FROM users;",
		"SELECT client_name FROM portfolios # note\n, users;",
		"SELECT client_name AS users FROM portfolios ORDER BY users.password;",
		"SELECT client_name AS users FROM portfolios, users;",
		"SELECT client_name AS total FROM portfolios WHERE total > 1;",
	}
	for _, raw := range tests {
		_, err := Relational(raw, schema.Portfolios())
		if !errors.Is(err, ErrRejected) {
			t.Fatalf("Relational(%q) error = %v, want rejection", raw, err)
		}
		if ReasonOf(err) != ReasonUnknownIdentifier {
			t.Fatalf("Relational(%q) reason = %q", raw, ReasonOf(err))
		}
	}
}

func TestRelationalRejectsUnterminatedQuote(t *testing.T) {
	_, err := Relational("SELECT client_name FROM portfolios WHERE stock = 'TCS;", schema.Portfolios())
	if ReasonOf(err) != ReasonNotASelectStatement {
		t.Fatalf("reason = %q (err=%v)", ReasonOf(err), err)
	}
}

func TestRelationalKeepsSemicolonInsideLiteral(t *testing.T) {
	raw := "SELECT client_name FROM portfolios WHERE stock = 'a;b' ORDER BY portfolio_value DESC;"
	got, err := Relational(raw, schema.Portfolios())
	if err != nil {
		t.Fatalf("Relational() error = %v", err)
	}
	if got.SQL != raw {
		t.Fatalf("SQL = %q", got.SQL)
	}
}

func TestRelationalAcceptsQuotedColumnsAndDoubledQuotes(t *testing.T) {
	raw := "SELECT `client_name`, \"stock\" FROM portfolios WHERE client_name = 'D''Souza -- not a comment';"
	got, err := Relational(raw, schema.Portfolios())
	if err != nil {
		t.Fatalf("Relational() error = %v", err)
	}
	if got.SQL != raw {
		t.Fatalf("SQL = %q", got.SQL)
	}
}

func TestRelationalKeepsOnlyFirstStatement(t *testing.T) {
	got, err := Relational("SELECT client_name FROM portfolios; DROP TABLE portfolios;", schema.Portfolios())
	if err != nil {
		t.Fatalf("Relational() error = %v", err)
	}
	if got.SQL != "SELECT client_name FROM portfolios;" {
		t.Fatalf("SQL = %q", got.SQL)
	}
}

func TestRelationalRejectsNonSelect(t *testing.T) {
	for _, raw := range []string{"", "I cannot help with that.", "DELETE FROM portfolios;", "```sql\nUPDATE portfolios SET stock = 'x';\n```"} {
		_, err := Relational(raw, schema.Portfolios())
		if ReasonOf(err) != ReasonNotASelectStatement {
			t.Fatalf("Relational(%q) reason = %q (err=%v)", raw, ReasonOf(err), err)
		}
	}
}

func TestRelationalFencedEqualsPlain(t *testing.T) {
	plain := "SELECT stock, COUNT(*) AS holders FROM portfolios GROUP BY stock;"
	a, errA := Relational("```sql\n"+plain+"\n```", schema.Portfolios())
	b, errB := Relational(plain, schema.Portfolios())
	if errA != nil || errB != nil {
		t.Fatalf("errors = %v, %v", errA, errB)
	}
	if a != b {
		t.Fatalf("fenced %q != plain %q", a.SQL, b.SQL)
	}
}

func TestDocumentNormalizesOperators(t *testing.T) {
	got, err := Document(`{"risk": "High", "age": {$gt: 40}, "city": {"$in": ["Mumbai", "Pune"]}}`, schema.Clients())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	want := DocumentFilter{
		"risk": "High",
		"age":  map[string]any{"$gt": float64(40)},
		"city": map[string]any{"$in": []any{"Mumbai", "Pune"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Document() = %#v, want %#v", got, want)
	}
}

func TestDocumentQuotedAndBareOperatorsMatch(t *testing.T) {
	quoted, err := Document("```json\n{\"age\": {\"$lte\": 50}, \"preferences\": \"tech\"}\n```", schema.Clients())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	bare, err := Document(`{"age": {$lte: 50}, "preferences": "tech"}`, schema.Clients())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	if !reflect.DeepEqual(quoted, bare) {
		t.Fatalf("quoted %#v != bare %#v", quoted, bare)
	}
}

func TestDocumentRejections(t *testing.T) {
	tests := []struct {
		raw    string
		reason Reason
	}{
		{raw: "not json", reason: ReasonUnparseable},
		{raw: `["risk"]`, reason: ReasonUnparseable},
		{raw: "", reason: ReasonUnparseable},
		{raw: `{"salary": {"$gt": 10}}`, reason: ReasonUnknownField},
		{raw: `{"$where": "1 == 1"}`, reason: ReasonUnknownField},
	}
	for _, tt := range tests {
		_, err := Document(tt.raw, schema.Clients())
		if !errors.Is(err, ErrRejected) || ReasonOf(err) != tt.reason {
			t.Fatalf("Document(%q) error = %v, want reason %q", tt.raw, err, tt.reason)
		}
	}
}

func TestFallbackPerStore(t *testing.T) {
	relational, ok := Fallback(schema.Portfolios()).(RelationalQuery)
	if !ok || relational.SQL != schema.PortfoliosFallbackSQL {
		t.Fatalf("relational fallback = %#v", relational)
	}
	if _, err := Relational(relational.SQL, schema.Portfolios()); err != nil {
		t.Fatalf("fallback SQL should validate: %v", err)
	}
	document, ok := Fallback(schema.Clients()).(DocumentFilter)
	if !ok || len(document) != 0 {
		t.Fatalf("document fallback = %#v", document)
	}
}
