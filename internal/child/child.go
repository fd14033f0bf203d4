// Package child spawns the supervised command with its stdout and
// stderr wired to capture endpoints, and classifies how it terminated.
package child

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// Handle is a running child whose output streams the caller drains
// before reaping it.
type Handle struct {
	cmd    *exec.Cmd
	stdout *os.File // read end of the stdout pipe, or the pty master
	stderr *os.File // read end of the stderr pipe
}

// Spawn starts argv[0] with the remaining elements as its arguments.
// The child's stdout and stderr are replaced with pipe write ends; the
// parent keeps only the read ends, reachable via StdoutFD/StderrFD.
//
// With usePTY, stdout is wired to a pseudo-terminal slave instead, so
// stdio-buffered programs emit promptly; stderr stays on a pipe so the
// two streams remain distinguishable. Either way the write-side
// descriptors are closed in the parent before Spawn returns --
// otherwise the read ends would never see end-of-stream.
func Spawn(argv []string, usePTY bool) (*Handle, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe(stderr): %w", err)
	}
	cmd.Stderr = stderrW

	var stdoutR, stdoutW *os.File
	if usePTY {
		stdoutR, stdoutW, err = pty.Open()
		if err != nil {
			stderrR.Close()
			stderrW.Close()
			return nil, fmt.Errorf("pty(stdout): %w", err)
		}
	} else {
		stdoutR, stdoutW, err = os.Pipe()
		if err != nil {
			stderrR.Close()
			stderrW.Close()
			return nil, fmt.Errorf("pipe(stdout): %w", err)
		}
	}
	cmd.Stdout = stdoutW

	if err := cmd.Start(); err != nil {
		stdoutR.Close()
		stdoutW.Close()
		stderrR.Close()
		stderrW.Close()
		// The common case is the command not being found.
		return nil, fmt.Errorf("failed to execute: %w", err)
	}

	// The child owns the write sides now.
	stdoutW.Close()
	stderrW.Close()

	return &Handle{cmd: cmd, stdout: stdoutR, stderr: stderrR}, nil
}

// Pid returns the child's process id.
func (h *Handle) Pid() int { return h.cmd.Process.Pid }

// StdoutFD returns the descriptor the stdout stream is read from.
func (h *Handle) StdoutFD() int { return int(h.stdout.Fd()) }

// StderrFD returns the descriptor the stderr stream is read from.
func (h *Handle) StderrFD() int { return int(h.stderr.Fd()) }

// Close releases the read-side descriptors.
func (h *Handle) Close() {
	h.stdout.Close()
	h.stderr.Close()
}

// Wait reaps the child and classifies its termination. A status that
// is neither a normal exit nor a signal is an anomaly and comes back
// as an error.
func (h *Handle) Wait() (TerminationCause, error) {
	err := h.cmd.Wait()
	if err == nil {
		return Exited{Code: 0}, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("wait: %w", err)
	}

	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return nil, fmt.Errorf("unknown status returned from wait() for pid %d", h.Pid())
	}
	switch {
	case status.Exited():
		return Exited{Code: status.ExitStatus()}, nil
	case status.Signaled():
		sig := status.Signal()
		name, _ := SignalName(sig)
		return Signaled{Signal: sig, Name: name}, nil
	default:
		return nil, fmt.Errorf("unknown status %d returned from wait() for pid %d", int(status), h.Pid())
	}
}
