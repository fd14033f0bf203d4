package child

import (
	"fmt"
	"syscall"
)

// TerminationCause classifies how the child stopped running: a normal
// exit with a code, or death by signal.
type TerminationCause interface {
	// Message is the human-readable status line reported after the
	// captured streams end.
	Message() string
	// ExitCode is the code the supervising process should exit with.
	ExitCode() int
}

// Exited means the child exited normally.
type Exited struct {
	Code int
}

func (e Exited) Message() string {
	return fmt.Sprintf("Exited with status %d", e.Code)
}

// ExitCode propagates the child's own code.
func (e Exited) ExitCode() int { return e.Code }

// Signaled means the child was killed by a signal. Name is empty when
// the signal id has no table entry.
type Signaled struct {
	Signal syscall.Signal
	Name   string
}

func (s Signaled) Message() string {
	if s.Name != "" {
		return fmt.Sprintf("Killed by signal %d (%s)", int(s.Signal), s.Name)
	}
	return fmt.Sprintf("Killed by signal %d", int(s.Signal))
}

// ExitCode is the generic failure code: the child never produced one.
func (s Signaled) ExitCode() int { return 1 }
