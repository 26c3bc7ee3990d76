package prompt

import (
	"fmt"
	"strings"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

type Task string

const (
	TaskClassify            Task = "classify"
	TaskTranslateDocument   Task = "translate_document"
	TaskTranslateRelational Task = "translate_relational"
	TaskNarrate             Task = "narrate"
)

// DeclineReply is the literal the relational prompt tells the model to
// select when a question is out of scope.
const DeclineReply = "Sorry, question cannot be answered with current schema."

const classifyTemplate = `You route questions about a wealth-management dataset to the store that can answer them.

Stores:
1. mongo: client profiles (risk appetite, age, city, investment preferences).
%s
2. sql: client portfolios (portfolio value, relationship manager, stock holdings).
%s
Reply with exactly one word: mongo or sql.

Question: %s
Store:`

const documentTemplate = `You are a MongoDB expert. Generate a valid MongoDB filter JSON object based on the user's question.

IMPORTANT RULES:
- Output ONLY a valid MongoDB filter JSON object, nothing else
- No explanations, no commentary, no markdown formatting
- Use only the fields: %s
- For comparisons use MongoDB operators, e.g. {"age": {"$gt": 40}} for "over 40"
- For array fields use the value itself, e.g. {"preferences": "tech"} for clients with a "tech" preference
- For exact matches use {"field": "value"}
- For multiple conditions use {"field1": "value1", "field2": "value2"}

Schema:
%s
Question: %s

MongoDB Filter:`

const relationalTemplate = `You are a data assistant helping users query an SQL database.

ONLY use the following schema:
%s
- Use ONLY the columns and tables listed above. Do NOT use or invent any other column or table names.
- You must ALWAYS answer with ONLY a valid MySQL SELECT query ending with a semicolon, no matter what.
- NEVER give explanations, instructions, or commentary.
- If you cannot answer, output:
  SELECT '` + DeclineReply + `';

Example:
SELECT relationship_manager, SUM(portfolio_value) AS total_portfolio_value
FROM portfolios
GROUP BY relationship_manager;

Question: %s
SQL Query:`

const narrateTemplate = `You are a helpful assistant for a wealth-management desk. The structured lookup for the question below did not return data.
Answer briefly in plain text using only what the question itself says, and suggest how it could be rephrased for the %s data described here:
%s
Question: %s`

// Build renders the prompt for task. The descriptor selects the store the
// prompt is about; classification always embeds both stores.
func Build(task Task, question string, descriptor *schema.Descriptor) string {
	question = strings.TrimSpace(question)
	if descriptor == nil {
		descriptor = schema.Portfolios()
	}
	switch task {
	case TaskClassify:
		return fmt.Sprintf(classifyTemplate, schema.Clients().Describe(), schema.Portfolios().Describe(), question)
	case TaskTranslateDocument:
		return fmt.Sprintf(documentTemplate, strings.Join(descriptor.FieldNames(), ", "), descriptor.Describe(), question)
	case TaskTranslateRelational:
		return fmt.Sprintf(relationalTemplate, descriptor.Describe(), question)
	default:
		return fmt.Sprintf(narrateTemplate, descriptor.Source, descriptor.Describe(), question)
	}
}
