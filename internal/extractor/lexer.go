package extractor

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokChar
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
	end  int
	line int
	// doc is the `///` block directly preceding the token, if any.
	doc string
}

func (t token) is(text string) bool {
	return t.kind != tokString && t.kind != tokChar && t.text == text
}

func (t token) isIdent() bool {
	return t.kind == tokIdent
}

// lexer splits C++ header text into tokens. Preprocessor lines and ordinary
// comments are dropped; runs of `///` lines are attached to the next token.
type lexer struct {
	src       string
	pos       int
	line      int
	lineStart bool
	doc       []string
	toks      []token
}

func lex(src string, firstLine int) ([]token, error) {
	l := &lexer{src: src, line: firstLine, lineStart: true}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

func (l *lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *lexer) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: l.line, Err: fmt.Errorf("%w: %s", ErrUnterminated, fmt.Sprintf(format, args...))}
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		switch {
		case c == '\n':
			l.line++
			l.pos++
			l.lineStart = true
		case c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.peekAt(1) == '/':
			l.lineComment()
		case c == '/' && l.peekAt(1) == '*':
			if err := l.blockComment(); err != nil {
				return err
			}
		case c == '#' && l.lineStart:
			l.preprocessor()
		case c == '"':
			if err := l.quoted('"', tokString); err != nil {
				return err
			}
		case c == '\'':
			if err := l.quoted('\'', tokChar); err != nil {
				return err
			}
		case isIdentStart(c):
			l.word(tokIdent, isIdentPart)
		case c >= '0' && c <= '9':
			l.word(tokNumber, isNumberPart)
		case c == ':' && l.peekAt(1) == ':':
			l.emit(tokPunct, l.pos, l.pos+2)
		default:
			l.emit(tokPunct, l.pos, l.pos+1)
		}
	}
	return nil
}

func (l *lexer) emit(kind tokenKind, start, end int) {
	l.toks = append(l.toks, token{
		kind: kind,
		text: l.src[start:end],
		pos:  start,
		end:  end,
		line: l.line,
		doc:  strings.Join(l.doc, "\n"),
	})
	l.doc = nil
	l.pos = end
	l.lineStart = false
}

func (l *lexer) word(kind tokenKind, part func(byte) bool) {
	end := l.pos + 1
	for end < len(l.src) && part(l.src[end]) {
		end++
	}
	l.emit(kind, l.pos, end)
}

func (l *lexer) lineComment() {
	end := strings.IndexByte(l.src[l.pos:], '\n')
	if end < 0 {
		end = len(l.src)
	} else {
		end += l.pos
	}

	text := l.src[l.pos:end]
	if strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////") {
		l.doc = append(l.doc, text)
	} else {
		l.doc = nil
	}
	l.pos = end
}

func (l *lexer) blockComment() error {
	end := strings.Index(l.src[l.pos+2:], "*/")
	if end < 0 {
		return l.errorf("block comment")
	}
	end += l.pos + 4
	l.line += strings.Count(l.src[l.pos:end], "\n")
	l.pos = end
	l.doc = nil
	return nil
}

func (l *lexer) preprocessor() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.peekAt(1) == '\n' {
			l.pos += 2
			l.line++
			continue
		}
		if c == '\n' {
			break
		}
		l.pos++
	}
	l.doc = nil
}

func (l *lexer) quoted(quote byte, kind tokenKind) error {
	start := l.pos
	i := l.pos + 1
	for i < len(l.src) {
		switch l.src[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return l.errorf("literal %s", l.src[start:i])
		case quote:
			l.emit(kind, start, i+1)
			return nil
		}
		i++
	}
	return l.errorf("literal %s", l.src[start:])
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isNumberPart(c byte) bool {
	return isIdentPart(c) || c == '.' || c == '\''
}

// renderTokens joins a token run the way declarations are written in headers:
// adjacent words are separated by a space and commas are followed by one.
func renderTokens(toks []token) string {
	var sb strings.Builder
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1]
			if prev.is(",") || isWordish(prev) && isWordish(t) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.text)
	}
	return sb.String()
}

func isWordish(t token) bool {
	return t.kind == tokIdent || t.kind == tokNumber || t.kind == tokString
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
