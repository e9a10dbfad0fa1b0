package acme

import (
	"fmt"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNewline
	tokIdent    // label/mnemonic/register name
	tokDirective // !byte, !word, !text, !fill (leading '!' stripped)
	tokNumber
	tokString
	tokComma
	tokColon
	tokHash
	tokLParen
	tokRParen
	tokPlus
	tokEquals
	tokStar
)

type token struct {
	kind tokenKind
	text string
	val  uint64 // populated for tokNumber
	line int
}

// lex splits ACME source text into a flat token stream, one line's worth
// terminated by a tokNewline (blank lines and full-line comments collapse
// to nothing rather than an empty newline run, so the parser never has to
// special-case them).
func lex(src string) ([]token, error) {
	var toks []token
	lines := strings.Split(src, "\n")
	for ln, raw := range lines {
		line := stripComment(raw)
		lineToks, err := lexLine(line, ln+1)
		if err != nil {
			return nil, err
		}
		if len(lineToks) == 0 {
			continue
		}
		toks = append(toks, lineToks...)
		toks = append(toks, token{kind: tokNewline, line: ln + 1})
	}
	toks = append(toks, token{kind: tokEOF})
	return toks, nil
}

func stripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx >= 0 {
		return line[:idx]
	}
	return line
}

func lexLine(line string, lineNo int) ([]token, error) {
	var toks []token
	i, n := 0, len(line)
	for i < n {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == ',':
			toks = append(toks, token{kind: tokComma, line: lineNo})
			i++
		case c == ':':
			toks = append(toks, token{kind: tokColon, line: lineNo})
			i++
		case c == '#':
			toks = append(toks, token{kind: tokHash, line: lineNo})
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen, line: lineNo})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, line: lineNo})
			i++
		case c == '+':
			toks = append(toks, token{kind: tokPlus, line: lineNo})
			i++
		case c == '=':
			toks = append(toks, token{kind: tokEquals, line: lineNo})
			i++
		case c == '*':
			toks = append(toks, token{kind: tokStar, line: lineNo})
			i++
		case c == '"':
			j := i + 1
			for j < n && line[j] != '"' {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("line %d: unterminated string literal", lineNo)
			}
			toks = append(toks, token{kind: tokString, text: line[i+1 : j], line: lineNo})
			i = j + 1
		case c == '$':
			j := i + 1
			for j < n && isHex(line[j]) {
				j++
			}
			v, err := parseUint(line[i+1:j], 16)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			toks = append(toks, token{kind: tokNumber, text: line[i:j], val: v, line: lineNo})
			i = j
		case c == '%':
			j := i + 1
			for j < n && (line[j] == '0' || line[j] == '1') {
				j++
			}
			v, err := parseUint(line[i+1:j], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			toks = append(toks, token{kind: tokNumber, text: line[i:j], val: v, line: lineNo})
			i = j
		case c >= '0' && c <= '9':
			j := i
			for j < n && line[j] >= '0' && line[j] <= '9' {
				j++
			}
			v, err := parseUint(line[i:j], 10)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			toks = append(toks, token{kind: tokNumber, text: line[i:j], val: v, line: lineNo})
			i = j
		case c == '!':
			j := i + 1
			for j < n && isIdentRune(line[j]) {
				j++
			}
			toks = append(toks, token{kind: tokDirective, text: line[i+1 : j], line: lineNo})
			i = j
		case isIdentStart(c):
			j := i
			for j < n && isIdentRune(line[j]) {
				j++
			}
			toks = append(toks, token{kind: tokIdent, text: line[i:j], line: lineNo})
			i = j
		default:
			return nil, fmt.Errorf("line %d: unexpected character %q", lineNo, c)
		}
	}
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentRune(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseUint(s string, base int) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric literal")
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i])
		if !ok || int(d) >= base {
			return 0, fmt.Errorf("invalid digit %q", s[i])
		}
		v = v*uint64(base) + uint64(d)
	}
	return v, nil
}

func digitValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
