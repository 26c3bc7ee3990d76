package translate

import (
	"regexp"
	"strings"

	"github.com/wealthdesk/wealthdesk/internal/schema"
)

var selectKeywordPattern = regexp.MustCompile(`(?i)\bSELECT\b`)

var sqlKeywords = map[string]struct{}{}

func init() {
	for _, word := range strings.Fields(`
		select from where and or not as group by order desc asc limit offset on
		distinct join left right inner outer cross having in is null like between
		case when then else end union all exists true false with
		sum count avg max min round abs lower upper coalesce ifnull concat length cast
		decimal signed unsigned char`) {
		sqlKeywords[word] = struct{}{}
	}
}

// Relational extracts the first SELECT statement from raw model output and
// checks that every identifier it references is declared by descriptor.
func Relational(raw string, descriptor *schema.Descriptor) (RelationalQuery, error) {
	cleaned := Clean(raw)

	loc := selectKeywordPattern.FindStringIndex(cleaned)
	if loc == nil {
		return RelationalQuery{}, reject(ReasonNotASelectStatement, "%q", truncate(cleaned, 80))
	}
	tokens, end, terminated, err := scanStatement(cleaned[loc[0]:])
	if err != nil {
		return RelationalQuery{}, err
	}
	// Without a semicolon the whole output must be the statement.
	if !terminated && loc[0] != 0 {
		return RelationalQuery{}, reject(ReasonNotASelectStatement, "%q", truncate(cleaned, 80))
	}
	statement := strings.TrimSpace(cleaned[loc[0] : loc[0]+end])

	if identifier, ok := firstUnknownIdentifier(tokens, descriptor); !ok {
		return RelationalQuery{}, reject(ReasonUnknownIdentifier, "%q", identifier)
	}
	return RelationalQuery{SQL: statement}, nil
}

// firstUnknownIdentifier walks the names of a statement. Keywords, declared
// fields, the source table and the name right after AS pass. A column alias
// may also be referenced by a trailing GROUP BY, HAVING or ORDER BY clause
// once no FROM or JOIN follows, and never as part of a qualified name.
func firstUnknownIdentifier(tokens []sqlToken, descriptor *schema.Descriptor) (string, bool) {
	lastSource := -1
	for i, token := range tokens {
		if token.isWord("from") || token.isWord("join") {
			lastSource = i
		}
	}
	trailingClause := len(tokens)
	for i := lastSource + 1; i < len(tokens); i++ {
		if tokens[i].isWord("group") || tokens[i].isWord("order") || tokens[i].isWord("having") {
			trailingClause = i
			break
		}
	}

	aliases := map[string]struct{}{}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i].isWord("as") && tokens[i+1].isName() {
			aliases[tokens[i+1].text] = struct{}{}
		}
	}

	for i, token := range tokens {
		if !token.isName() {
			continue
		}
		if i > 0 && tokens[i-1].isWord("as") {
			continue
		}
		if token.kind == tokenWord {
			if _, ok := sqlKeywords[token.text]; ok {
				continue
			}
		}
		if descriptor.Allows(token.text) {
			continue
		}
		if _, ok := aliases[token.text]; ok && i > trailingClause && !qualified(tokens, i) {
			continue
		}
		return token.raw, false
	}
	return "", true
}

func qualified(tokens []sqlToken, i int) bool {
	dot := func(j int) bool {
		return j >= 0 && j < len(tokens) && tokens[j].kind == tokenSymbol && tokens[j].text == "."
	}
	return dot(i-1) || dot(i+1)
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit] + "..."
}
