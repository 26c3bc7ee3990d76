package relational

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wealthdesk/wealthdesk/internal/result"
	"github.com/wealthdesk/wealthdesk/internal/store"
	"github.com/wealthdesk/wealthdesk/internal/translate"
)

type Executor struct {
	db           *sql.DB
	queryTimeout time.Duration
}

func NewExecutor(db *sql.DB, queryTimeout time.Duration) *Executor {
	if queryTimeout <= 0 {
		queryTimeout = store.DefaultQueryTimeout
	}
	return &Executor{db: db, queryTimeout: queryTimeout}
}

// Execute runs a validated SELECT on a connection dedicated to this call. The
// connection goes back to the pool on every path.
func (e *Executor) Execute(ctx context.Context, candidate translate.Candidate) (result.Table, error) {
	query, ok := candidate.(translate.RelationalQuery)
	if !ok {
		return result.Table{}, store.ExecutionFailed("relational execute", fmt.Errorf("unsupported candidate for store %q", candidate.Store()))
	}
	sqlText := stripTrailingSemicolons(query.SQL)
	if sqlText == "" {
		return result.Table{}, store.ExecutionFailed("relational execute", fmt.Errorf("sql is required"))
	}

	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return result.Table{}, store.Unavailable("acquire connection", err)
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return result.Table{}, store.ExecutionFailed("execute query", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return result.Table{}, store.ExecutionFailed("query columns", err)
	}
	kinds := columnKinds(rows, len(columns))

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return result.Table{}, store.ExecutionFailed("scan row", err)
		}
		resultRows = append(resultRows, normalizeValues(values, kinds))
	}
	if err := rows.Err(); err != nil {
		return result.Table{}, store.Unavailable("iterate rows", err)
	}

	table := result.NewTable(columns, resultRows)
	for i, kind := range kinds {
		if kind != "" {
			table.Columns[i].Kind = kind
		}
	}
	return table, nil
}

// HealthCheck pings the database within the query timeout.
func (e *Executor) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()
	if err := e.db.PingContext(ctx); err != nil {
		return store.Unavailable("ping relational db", err)
	}
	return nil
}

// columnKinds maps database type names to result kinds. An empty kind means
// the driver did not say and the first row decides.
func columnKinds(rows *sql.Rows, count int) []result.Kind {
	kinds := make([]result.Kind, count)
	types, err := rows.ColumnTypes()
	if err != nil || len(types) != count {
		return kinds
	}
	for i, columnType := range types {
		kinds[i] = kindForDatabaseType(columnType.DatabaseTypeName())
	}
	return kinds
}

func kindForDatabaseType(name string) result.Kind {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(upper, '('); i >= 0 {
		upper = upper[:i]
	}
	switch {
	case upper == "":
		return ""
	case strings.Contains(upper, "INTERVAL"):
		return result.KindOther
	case strings.Contains(upper, "INT"),
		strings.Contains(upper, "DECIMAL"),
		strings.Contains(upper, "NUMERIC"),
		strings.Contains(upper, "FLOAT"),
		strings.Contains(upper, "DOUBLE"),
		upper == "REAL":
		return result.KindNumber
	case strings.Contains(upper, "CHAR"),
		strings.Contains(upper, "TEXT"),
		upper == "STRING",
		upper == "ENUM",
		upper == "NAME":
		return result.KindString
	default:
		return result.KindOther
	}
}

type float64er interface {
	Float64() float64
}

// normalizeValues maps every cell to string, int64, float64 or nil.
func normalizeValues(values []any, kinds []result.Kind) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		normalized[i] = normalizeValue(value, kinds[i])
	}
	return normalized
}

func normalizeValue(value any, kind result.Kind) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case []byte:
		return normalizeText(string(typed), kind)
	case string:
		return normalizeText(typed, kind)
	case int64, float64:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return int64(typed)
	case int32:
		return int64(typed)
	case int16:
		return int64(typed)
	case int8:
		return int64(typed)
	case uint8:
		return int64(typed)
	case uint16:
		return int64(typed)
	case uint32:
		return int64(typed)
	case float32:
		return float64(typed)
	case time.Time:
		return typed.UTC().Format(time.RFC3339)
	case float64er:
		return typed.Float64()
	case fmt.Stringer:
		return normalizeText(typed.String(), kind)
	default:
		return normalizeText(fmt.Sprint(typed), kind)
	}
}

// normalizeText turns numeric text from number columns into int64 or float64.
func normalizeText(text string, kind result.Kind) any {
	if kind != result.KindNumber {
		return text
	}
	if parsed, err := strconv.ParseInt(text, 10, 64); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(text, 64); err == nil {
		return parsed
	}
	return text
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
