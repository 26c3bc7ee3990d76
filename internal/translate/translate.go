package translate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

// Candidate is a translated query that has not been executed yet. It is either
// a DocumentFilter or a RelationalQuery.
type Candidate interface {
	Store() schema.StoreID
	isCandidate()
}

// DocumentFilter maps top-level document fields to predicates.
type DocumentFilter map[string]any

func (DocumentFilter) Store() schema.StoreID { return schema.StoreDocument }
func (DocumentFilter) isCandidate()          {}

type RelationalQuery struct {
	SQL string
}

func (RelationalQuery) Store() schema.StoreID { return schema.StoreRelational }
func (RelationalQuery) isCandidate()          {}

type Reason string

const (
	ReasonUnparseable         Reason = "unparseable"
	ReasonUnknownField        Reason = "unknown_field"
	ReasonNotASelectStatement Reason = "not_a_select_statement"
	ReasonUnknownIdentifier   Reason = "unknown_identifier"
)

var ErrRejected = errors.New("model output rejected")

type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("model output rejected: %s", r.Reason)
	}
	return fmt.Sprintf("model output rejected: %s: %s", r.Reason, r.Detail)
}

func (r *Rejection) Is(target error) bool { return target == ErrRejected }

func reject(reason Reason, format string, args ...any) error {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the rejection reason carried by err, or "" when err is not
// a rejection.
func ReasonOf(err error) Reason {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection.Reason
	}
	return ""
}

var (
	taskLabelPattern   = regexp.MustCompile(`(?i)(sql\s*query|mongodb\s*filter)\s*[:：]`)
	fencePattern       = regexp.MustCompile("(?i)```(sql|json)?")
	leadingWordPattern = regexp.MustCompile(`(?i)^(sql|json)\b\s*`)
)

// Clean strips fenced-code markers and task labels from raw model text.
func Clean(raw string) string {
	cleaned := taskLabelPattern.ReplaceAllString(raw, "")
	cleaned = fencePattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = leadingWordPattern.ReplaceAllString(cleaned, "")
	return strings.Trim(cleaned, "` \t\r\n")
}

// Fallback returns the schema-safe query substituted for rejected output.
func Fallback(descriptor *schema.Descriptor) Candidate {
	if descriptor.StoreID == schema.StoreDocument {
		filter, err := Document(descriptor.Fallback, descriptor)
		if err != nil {
			return DocumentFilter{}
		}
		return filter
	}
	return RelationalQuery{SQL: descriptor.Fallback}
}
