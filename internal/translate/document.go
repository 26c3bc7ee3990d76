package translate

import (
	"encoding/json"
	"regexp"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

// Models often emit operator keys without quotes ({"age": {$gt: 40}}).
var bareOperatorPattern = regexp.MustCompile(`([{,]\s*)\$(gte|gt|lte|lt|nin|in|ne|eq)\s*:`)

// Document parses raw model output into a filter whose top-level keys are all
// declared fields of descriptor.
func Document(raw string, descriptor *schema.Descriptor) (DocumentFilter, error) {
	cleaned := NormalizeOperators(Clean(raw))
	if cleaned == "" {
		return nil, reject(ReasonUnparseable, "empty filter")
	}

	var parsed any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, reject(ReasonUnparseable, "%v", err)
	}
	mapping, ok := parsed.(map[string]any)
	if !ok {
		return nil, reject(ReasonUnparseable, "filter is not an object")
	}
	for key := range mapping {
		if !descriptor.HasField(key) {
			return nil, reject(ReasonUnknownField, "%q", key)
		}
	}
	return DocumentFilter(mapping), nil
}

// NormalizeOperators quotes bare comparison operator keys.
func NormalizeOperators(filter string) string {
	return bareOperatorPattern.ReplaceAllString(filter, `${1}"$$${2}":`)
}
