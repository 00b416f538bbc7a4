package spec

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// The cluster block and the deployments list use different sub-grammars, so
// the deployments section (from the `deployments:` token to end of input)
// is extracted and parsed on its own, then removed before the cluster block
// parser runs. Removal never alters cluster-field values.
var deploymentsSection = regexp.MustCompile(`(?ms)^deployments\s*:.*`)

func parseDSL(text string) (*Config, error) {
	cfg := &Config{Cluster: New()}

	if loc := deploymentsSection.FindStringIndex(text); loc != nil {
		deployments, err := parseDeploymentsDSL(text[loc[0]:loc[1]])
		if err != nil {
			return nil, err
		}
		cfg.Deployments = deployments
		text = text[:loc[0]] + text[loc[1]:]
	}

	if strings.TrimSpace(text) == "" {
		return cfg, nil
	}

	fields, err := parseClusterBlock(text)
	if err != nil {
		return nil, err
	}
	warnings, err := applyClusterFields(&cfg.Cluster, fields)
	if err != nil {
		return nil, err
	}
	sort.Strings(warnings)
	cfg.Warnings = append(cfg.Warnings, warnings...)

	return cfg, nil
}

// parseClusterBlock reads `cluster { key: value ... }` into a field map
// with the same value types the JSON path produces, so both formats share
// one typed-extraction step.
func parseClusterBlock(text string) (map[string]any, error) {
	lex := newDSLLexer(text)

	tok, err := lex.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenWord || tok.text != "cluster" {
		return nil, &ParseError{Reason: fmt.Sprintf("expected a cluster block, found %q", tok.text)}
	}
	if err := lex.expect(tokenOpenBrace); err != nil {
		return nil, err
	}

	fields := make(map[string]any)
	for {
		tok, err := lex.next()
		if err != nil {
			return nil, &ParseError{Reason: "unbalanced braces in cluster block"}
		}
		if tok.kind == tokenCloseBrace {
			break
		}
		if tok.kind != tokenWord {
			return nil, &ParseError{Reason: fmt.Sprintf("expected a key, found %q", tok.text)}
		}
		key := tok.text
		if err := lex.expect(tokenColon); err != nil {
			return nil, err
		}
		value, err := parseDSLValue(lex, key)
		if err != nil {
			return nil, err
		}
		fields[key] = value
	}

	if tok, err := lex.next(); err == nil {
		return nil, &ParseError{Reason: fmt.Sprintf("unexpected %q after cluster block", tok.text)}
	}

	return fields, nil
}

// parseDSLValue reads a scalar or a bracketed list. Bare words that parse
// as integers become ints; everything else stays a string. Lists become
// []any so the shared extraction can enforce the per-key element type.
func parseDSLValue(lex *dslLexer, key string) (any, error) {
	tok, err := lex.next()
	if err != nil {
		return nil, &ParseError{Field: key, Reason: "missing value"}
	}
	switch tok.kind {
	case tokenWord:
		return inferScalar(tok), nil
	case tokenOpenBracket:
		var list []any
		for {
			tok, err := lex.next()
			if err != nil {
				return nil, &ParseError{Field: key, Reason: "unterminated list"}
			}
			switch tok.kind {
			case tokenCloseBracket:
				return list, nil
			case tokenComma:
			case tokenWord:
				list = append(list, inferScalar(tok))
			default:
				return nil, &ParseError{Field: key, Value: tok.text, Reason: "unexpected token in list"}
			}
		}
	default:
		return nil, &ParseError{Field: key, Value: tok.text, Reason: "unexpected value"}
	}
}

func inferScalar(tok dslToken) any {
	if tok.quoted {
		return tok.text
	}
	if n, err := strconv.Atoi(tok.text); err == nil {
		return n
	}
	return tok.text
}

// parseDeploymentsDSL reads `deployments: [ directive[: {params}], ... ]`.
func parseDeploymentsDSL(text string) ([]Deployment, error) {
	lex := newDSLLexer(text)

	tok, err := lex.next()
	if err != nil || tok.kind != tokenWord || tok.text != "deployments" {
		return nil, &ParseError{Field: "deployments", Reason: "malformed deployments section"}
	}
	if err := lex.expect(tokenColon); err != nil {
		return nil, err
	}
	if err := lex.expect(tokenOpenBracket); err != nil {
		return nil, err
	}

	var deployments []Deployment
	for {
		tok, err := lex.next()
		if err != nil {
			return nil, &ParseError{Field: "deployments", Reason: "unterminated deployments list"}
		}
		switch tok.kind {
		case tokenCloseBracket:
			if tok, err := lex.next(); err == nil {
				return nil, &ParseError{Field: "deployments", Value: tok.text, Reason: "unexpected trailing input"}
			}
			return deployments, nil
		case tokenComma:
		case tokenWord:
			d := Deployment{Name: tok.text}
			if lex.peekKind() == tokenColon {
				lex.next()
				params, err := parseParamsBlock(lex, d.Name)
				if err != nil {
					return nil, err
				}
				d.Params = params
			}
			deployments = append(deployments, d)
		default:
			return nil, &ParseError{Field: "deployments", Value: tok.text, Reason: "unexpected token"}
		}
	}
}

func parseParamsBlock(lex *dslLexer, directive string) (map[string]string, error) {
	if err := lex.expect(tokenOpenBrace); err != nil {
		return nil, &ParseError{Field: directive, Reason: "directive parameters must be a { } block"}
	}
	params := make(map[string]string)
	for {
		tok, err := lex.next()
		if err != nil {
			return nil, &ParseError{Field: directive, Reason: "unterminated parameter block"}
		}
		switch tok.kind {
		case tokenCloseBrace:
			return params, nil
		case tokenComma:
		case tokenWord:
			key := tok.text
			if err := lex.expect(tokenColon); err != nil {
				return nil, err
			}
			value, err := lex.next()
			if err != nil || value.kind != tokenWord {
				return nil, &ParseError{Field: key, Reason: "missing parameter value"}
			}
			params[key] = value.text
		default:
			return nil, &ParseError{Field: directive, Value: tok.text, Reason: "unexpected token in parameter block"}
		}
	}
}

type dslTokenKind int

const (
	tokenWord dslTokenKind = iota
	tokenColon
	tokenOpenBrace
	tokenCloseBrace
	tokenOpenBracket
	tokenCloseBracket
	tokenComma
	tokenEOF
)

type dslToken struct {
	kind   dslTokenKind
	text   string
	quoted bool
}

type dslLexer struct {
	src []rune
	pos int
}

func newDSLLexer(src string) *dslLexer {
	return &dslLexer{src: []rune(src)}
}

func (l *dslLexer) next() (dslToken, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return dslToken{kind: tokenEOF}, fmt.Errorf("unexpected end of input")
	}

	switch c := l.src[l.pos]; c {
	case ':':
		l.pos++
		return dslToken{kind: tokenColon, text: ":"}, nil
	case '{':
		l.pos++
		return dslToken{kind: tokenOpenBrace, text: "{"}, nil
	case '}':
		l.pos++
		return dslToken{kind: tokenCloseBrace, text: "}"}, nil
	case '[':
		l.pos++
		return dslToken{kind: tokenOpenBracket, text: "["}, nil
	case ']':
		l.pos++
		return dslToken{kind: tokenCloseBracket, text: "]"}, nil
	case ',':
		l.pos++
		return dslToken{kind: tokenComma, text: ","}, nil
	case '"':
		return l.quotedWord()
	default:
		return l.bareWord()
	}
}

func (l *dslLexer) quotedWord() (dslToken, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		if l.src[l.pos] == '"' {
			text := string(l.src[start+1 : l.pos])
			l.pos++
			return dslToken{kind: tokenWord, text: text, quoted: true}, nil
		}
		l.pos++
	}
	return dslToken{}, fmt.Errorf("unterminated string starting at offset %d", start)
}

func (l *dslLexer) bareWord() (dslToken, error) {
	start := l.pos
	for l.pos < len(l.src) && !isDSLDelimiter(l.src[l.pos]) {
		l.pos++
	}
	return dslToken{kind: tokenWord, text: string(l.src[start:l.pos])}, nil
}

func (l *dslLexer) expect(kind dslTokenKind) error {
	tok, err := l.next()
	if err != nil {
		return &ParseError{Reason: "unexpected end of input"}
	}
	if tok.kind != kind {
		return &ParseError{Value: tok.text, Reason: "unexpected token"}
	}
	return nil
}

// peekKind reports the kind of the next token without consuming it.
func (l *dslLexer) peekKind() dslTokenKind {
	saved := l.pos
	tok, err := l.next()
	l.pos = saved
	if err != nil {
		return tokenEOF
	}
	return tok.kind
}

func (l *dslLexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func isDSLDelimiter(c rune) bool {
	switch c {
	case ' ', '\t', '\r', '\n', ':', '{', '}', '[', ']', ',', '"':
		return true
	}
	return false
}
