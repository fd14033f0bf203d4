// Package render re-emits captured child output on the invoking
// terminal, wrapping stderr content in red highlight spans and the
// final status message in blue.
package render

import (
	"io"
)

// Role identifies which child stream a chunk of bytes came from.
type Role int

const (
	RoleStdout Role = iota
	RoleStderr
)

// ANSI markers. The end marker closes both the red and blue spans.
const (
	stderrBegin = "\x1b[31m"
	infoBegin   = "\x1b[34m"
	spanEnd     = "\x1b[m"
)

// Sink is a role-tagged writer. It owns the highlight state and emits
// the begin/end markers exactly when consecutive writes switch roles,
// so a contiguous run of stderr bytes is wrapped in a single marker
// pair no matter how many writes deliver it.
//
// Markers are always written to the err writer; payload bytes go to
// the writer matching their role. Not safe for concurrent use: the
// demultiplexer loop is the only writer.
type Sink struct {
	out      io.Writer
	err      io.Writer
	colored  bool
	inStderr bool
}

// NewSink returns a Sink writing stdout-role bytes to out and
// stderr-role bytes to err. When colored is false, no escape sequences
// are ever emitted; routing and payload bytes are unchanged.
func NewSink(out, err io.Writer, colored bool) *Sink {
	return &Sink{out: out, err: err, colored: colored}
}

// Write emits p verbatim, preceded by a highlight transition marker if
// the role differs from the previous write's role.
func (s *Sink) Write(p []byte, role Role) error {
	if err := s.setStderr(role == RoleStderr); err != nil {
		return err
	}
	w := s.out
	if role == RoleStderr {
		w = s.err
	}
	_, err := w.Write(p)
	return err
}

// Info writes a status line to the out writer, wrapped in its own blue
// marker pair and terminated by a newline. Any open stderr highlight
// span is closed first.
func (s *Sink) Info(msg string) error {
	if err := s.setStderr(false); err != nil {
		return err
	}
	if !s.colored {
		_, err := io.WriteString(s.out, msg+"\n")
		return err
	}
	_, err := io.WriteString(s.out, infoBegin+msg+spanEnd+"\n")
	return err
}

func (s *Sink) setStderr(on bool) error {
	if on == s.inStderr {
		return nil
	}
	s.inStderr = on
	if !s.colored {
		return nil
	}
	marker := spanEnd
	if on {
		marker = stderrBegin
	}
	_, err := io.WriteString(s.err, marker)
	return err
}
