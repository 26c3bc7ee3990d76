package result

import "fmt"

const (
	NoResultsText = "No results found for your query."
	ApologyText   = "Sorry, something went wrong while answering your question."
)

// Envelope is the response body of every answered question.
type Envelope struct {
	Text  string     `json:"text"`
	Table *TableView `json:"table"`
	Chart *Chart     `json:"chart"`
}

type TableView struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type Chart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
	Label  string    `json:"label"`
}

// Shape turns a result table into an envelope. The chart pairs the first
// string column with the first number column and is omitted when either is
// missing.
func Shape(table Table, question string) Envelope {
	if table.Empty() {
		return Envelope{
			Text:  NoResultsText,
			Table: &TableView{Columns: table.ColumnNames(), Rows: [][]any{}},
		}
	}

	rows := make([][]any, len(table.Rows))
	for i, row := range table.Rows {
		rows[i] = append([]any(nil), row...)
	}
	return Envelope{
		Text:  "Results for: " + question,
		Table: &TableView{Columns: table.ColumnNames(), Rows: rows},
		Chart: chartFor(table),
	}
}

// Text returns an envelope that carries only narrative text.
func Text(text string) Envelope {
	return Envelope{Text: text}
}

// Apology returns the generic failure envelope, optionally followed by detail.
func Apology(detail string) Envelope {
	if detail == "" {
		return Text(ApologyText)
	}
	return Text(ApologyText + "\n\n" + detail)
}

func chartFor(table Table) *Chart {
	labelIndex, dataIndex := -1, -1
	for i, column := range table.Columns {
		switch column.Kind {
		case KindString:
			if labelIndex < 0 {
				labelIndex = i
			}
		case KindNumber:
			if dataIndex < 0 {
				dataIndex = i
			}
		}
	}
	if labelIndex < 0 || dataIndex < 0 {
		return nil
	}

	chart := &Chart{
		Labels: make([]string, 0, len(table.Rows)),
		Data:   make([]float64, 0, len(table.Rows)),
		Label:  table.Columns[dataIndex].Name,
	}
	for _, row := range table.Rows {
		chart.Labels = append(chart.Labels, label(row[labelIndex]))
		value, _ := Float(row[dataIndex])
		chart.Data = append(chart.Data, value)
	}
	return chart
}

func label(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
