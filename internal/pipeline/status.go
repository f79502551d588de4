package pipeline

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var (
	stageColor = color.New(color.FgCyan, color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
)

// Status prints one human readable line per pipeline step. Lines from
// concurrent module workers are serialised.
type Status struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStatus(out io.Writer) *Status {
	return &Status{out: out}
}

func (s *Status) line(c *color.Color, label, format string, args ...interface{}) {
	if s == nil || s.out == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s %s\n", c.Sprint(label), fmt.Sprintf(format, args...))
}

func (s *Status) Stage(format string, args ...interface{}) {
	s.line(stageColor, "==>", format, args...)
}

func (s *Status) Done(format string, args ...interface{}) {
	s.line(okColor, " ok", format, args...)
}

func (s *Status) Warn(format string, args ...interface{}) {
	s.line(warnColor, "  !", format, args...)
}
