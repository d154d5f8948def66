package formula

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of formula"
	case tokenNumber:
		return "number"
	case tokenIdent:
		return "identifier"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	}
	return "operator"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

var operators = map[rune]tokenKind{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'(': tokenLParen,
	')': tokenRParen,
}

// lex splits a formula into tokens. Identifiers may contain dots to address
// attributes like timesheet.hours.
func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)

	for i := 0; i < len(runes); {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case unicode.IsDigit(r) || r == '.':
			start := i
			dots := 0
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}

			text := string(runes[start:i])
			if dots > 1 || text == "." {
				return nil, &SyntaxError{Position: start, Msg: fmt.Sprintf("malformed number %q", text)}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, pos: start})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_' || runes[i] == '.') {
				i++
			}

			text := string(runes[start:i])
			if strings.HasSuffix(text, ".") || strings.Contains(text, "..") {
				return nil, &SyntaxError{Position: start, Msg: fmt.Sprintf("malformed identifier %q", text)}
			}
			tokens = append(tokens, token{kind: tokenIdent, text: text, pos: start})

		default:
			kind, ok := operators[r]
			if !ok {
				return nil, &SyntaxError{Position: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			tokens = append(tokens, token{kind: kind, text: string(r), pos: i})
			i++
		}
	}

	return append(tokens, token{kind: tokenEOF, pos: len(runes)}), nil
}
