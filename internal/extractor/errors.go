package extractor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedMacro is returned when macro arguments cannot be decomposed.
	ErrMalformedMacro = errors.New("malformed macro arguments")
	// ErrMissingDefault is returned when the default property names no declared property.
	ErrMissingDefault = errors.New("default property not found")
	// ErrDanglingOverride is returned when a carryover annotation has nothing to apply to.
	ErrDanglingOverride = errors.New("override not followed by a matching declaration")
	// ErrUnterminated is returned for unterminated comments, strings and blocks.
	ErrUnterminated = errors.New("unterminated construct")
	// ErrNoComponent is returned when a QML file declares no root component.
	ErrNoComponent = errors.New("no root component")
)

// ParseError locates a parse failure inside a source file.
type ParseError struct {
	Class string
	Macro string
	Line  int
	Err   error
}

func (e *ParseError) Error() string {
	var parts []string
	if e.Class != "" {
		parts = append(parts, fmt.Sprintf("while parsing class `%s`", e.Class))
	}
	if e.Macro != "" {
		parts = append(parts, fmt.Sprintf("while parsing macro `%s`", e.Macro))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("line %d", e.Line))
	}
	parts = append(parts, e.Err.Error())
	return strings.Join(parts, ": ")
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
