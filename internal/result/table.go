package result

import (
	"math"
	"strconv"
	"strings"
)

type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindOther  Kind = "other"
)

type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Table is the uniform result of a store execution. Every row carries one
// value per column.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// NewTable builds a table whose column kinds are inferred from the first row.
// Columns of an empty table are tagged KindOther.
func NewTable(names []string, rows [][]any) Table {
	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Kind: KindOther}
		if len(rows) > 0 && i < len(rows[0]) {
			columns[i].Kind = KindOf(rows[0][i])
		}
	}
	if rows == nil {
		rows = [][]any{}
	}
	return Table{Columns: columns, Rows: rows}
}

// KindOf reports how a single cell value is treated when shaping a chart.
// Numeric text counts as a number.
func KindOf(value any) Kind {
	switch typed := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case string:
		if _, ok := parseNumber(typed); ok {
			return KindNumber
		}
		return KindString
	default:
		return KindOther
	}
}

func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, column := range t.Columns {
		names[i] = column.Name
	}
	return names
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// Float converts a number-kind cell to float64. Values that cannot be
// converted yield 0 and false.
func Float(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case string:
		return parseNumber(typed)
	default:
		return 0, false
	}
}

func parseNumber(value string) (float64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}
