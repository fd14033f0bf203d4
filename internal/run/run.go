// Package run ties the supervisor, the demultiplexer and the renderer
// together for one supervised command.
package run

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"hlerr/internal/child"
	"hlerr/internal/demux"
	"hlerr/internal/render"
)

// ColorMode controls whether highlight markers are emitted.
type ColorMode int

const (
	ColorAlways ColorMode = iota
	ColorAuto
	ColorNever
)

// ParseColorMode parses the --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "always":
		return ColorAlways, nil
	case "auto":
		return ColorAuto, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAlways, fmt.Errorf("invalid color mode %q (want always, auto or never)", s)
	}
}

// Runner holds the configuration for one supervised run.
type Runner struct {
	Out   io.Writer // stdout-role target, normally os.Stdout
	Err   io.Writer // stderr-role target, normally os.Stderr
	PTY   bool      // run the child's stdout on a pseudo-terminal
	Color ColorMode
	Log   *slog.Logger
}

// Run executes argv under capture and re-renders its output. It
// returns the exit code the process should finish with: the child's
// own code on a normal exit, 1 when the child was signaled or when
// anything on our side failed fatally.
//
// A failure inside the demultiplexing loop does not abandon the child:
// buffered stdout is flushed best-effort and the child is still reaped
// and its status reported.
func (r *Runner) Run(argv []string) (int, error) {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	sink := render.NewSink(r.Out, r.Err, r.colored())
	lines := render.NewLineBuffer(sink)

	h, err := child.Spawn(argv, r.PTY)
	if err != nil {
		return 1, err
	}
	defer h.Close()
	log.Debug("child started", "pid", h.Pid(), "pty", r.PTY)

	if err := demux.Run(h.StdoutFD(), h.StderrFD(), lines, sink); err != nil {
		log.Error("stream capture failed", "error", err)
	}

	if err := lines.Flush(); err != nil {
		log.Error("flushing buffered stdout failed", "error", err)
	}

	cause, err := h.Wait()
	if err != nil {
		return 1, err
	}
	log.Debug("child reaped", "status", cause.Message())

	if err := sink.Info(cause.Message()); err != nil {
		return 1, fmt.Errorf("reporting child status: %w", err)
	}
	return cause.ExitCode(), nil
}

func (r *Runner) colored() bool {
	switch r.Color {
	case ColorNever:
		return false
	case ColorAuto:
		f, ok := r.Err.(*os.File)
		return ok && term.IsTerminal(int(f.Fd()))
	default:
		return true
	}
}
