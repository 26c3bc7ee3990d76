package translate

import (
	"regexp"
	"strings"
)

type tokenKind int

const (
	tokenWord tokenKind = iota
	tokenQuoted
	tokenLiteral
	tokenNumber
	tokenSymbol
)

// sqlToken is one lexical unit of a statement. Words and quoted identifiers
// carry lowercased text; literals carry none.
type sqlToken struct {
	kind tokenKind
	text string
	raw  string
}

func (t sqlToken) isName() bool {
	return t.kind == tokenWord || t.kind == tokenQuoted
}

func (t sqlToken) isWord(word string) bool {
	return t.kind == tokenWord && t.text == word
}

var numberPattern = regexp.MustCompile(`^(\d+([eE]\d*)?|0[xX][0-9a-fA-F]+)$`)

// scanStatement lexes sql from the start up to the first semicolon outside
// quotes in a single left-to-right pass, so whichever of a quote or a comment
// marker opens first decides how the following text is read. It returns the
// tokens, the offset just past the statement and whether a semicolon ended it.
//
// Comments, and backslashes inside quotes, are rejected rather than
// interpreted: MySQL, Postgres and duckdb disagree on both.
func scanStatement(sql string) ([]sqlToken, int, bool, error) {
	tokens := make([]sqlToken, 0, 32)
	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == ';':
			return tokens, i + 1, true, nil
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++
		case c == '\'' || c == '"' || c == '`':
			end, err := closeQuote(sql, i)
			if err != nil {
				return nil, 0, false, err
			}
			if c == '\'' {
				tokens = append(tokens, sqlToken{kind: tokenLiteral, raw: sql[i:end]})
			} else {
				quote := string(c)
				name := strings.ReplaceAll(sql[i+1:end-1], quote+quote, quote)
				tokens = append(tokens, sqlToken{kind: tokenQuoted, text: strings.ToLower(name), raw: sql[i:end]})
			}
			i = end
		case c == '#', c == '-' && peek(sql, i+1) == '-', c == '/' && peek(sql, i+1) == '*':
			return nil, 0, false, reject(ReasonUnknownIdentifier, "comment at offset %d", i)
		case isWordByte(c):
			j := i
			for j < len(sql) && isWordByte(sql[j]) {
				j++
			}
			word := sql[i:j]
			if numberPattern.MatchString(word) {
				tokens = append(tokens, sqlToken{kind: tokenNumber, raw: word})
			} else {
				tokens = append(tokens, sqlToken{kind: tokenWord, text: strings.ToLower(word), raw: word})
			}
			i = j
		default:
			tokens = append(tokens, sqlToken{kind: tokenSymbol, text: string(c), raw: string(c)})
			i++
		}
	}
	return tokens, len(sql), false, nil
}

// closeQuote returns the offset just past the quote opened at start. A
// doubled quote character is part of the quoted text.
func closeQuote(sql string, start int) (int, error) {
	quote := sql[start]
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			return 0, reject(ReasonUnknownIdentifier, "backslash inside quoted text at offset %d", i)
		case quote:
			if peek(sql, i+1) == quote {
				i++
				continue
			}
			return i + 1, nil
		}
	}
	return 0, reject(ReasonNotASelectStatement, "unterminated %c quote at offset %d", quote, start)
}

func peek(sql string, i int) byte {
	if i < len(sql) {
		return sql[i]
	}
	return 0
}

// Non-ASCII bytes count as word bytes: MySQL accepts them in bare identifiers.
func isWordByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
