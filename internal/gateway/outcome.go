package gateway

import "github.com/wealthdesk/wealthdesk/internal/result"

// Outcome is what a store path produces: either a shaped envelope or plain
// text that still needs to be wrapped.
type Outcome interface {
	isOutcome()
}

type Structured struct {
	Envelope result.Envelope
}

// PlainText carries text for a path that could not return rows. Cause is the
// metric label and decides whether a narrative is appended.
type PlainText struct {
	Text  string
	Cause Cause
}

func (Structured) isOutcome() {}
func (PlainText) isOutcome()  {}

type Cause string

const (
	// CauseDeclined is the model's own "cannot answer" reply. It is shown as is.
	CauseDeclined         Cause = "declined"
	CauseStoreUnavailable Cause = "store_unavailable"
	CauseQueryFailed      Cause = "query_failed"
	CauseInternal         Cause = "internal"
)

const (
	storeUnavailableText = "Sorry, the data store is not reachable right now. Please try again later."
	queryFailedText      = "Sorry, I could not run a query for that question. Please try rephrasing it."
)
