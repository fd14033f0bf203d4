// Package demux merges the child's stdout and stderr pipes onto the
// render sink, preserving their temporal interleaving at byte
// granularity.
package demux

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"hlerr/internal/render"
)

// ErrStream reports a descriptor-level error condition on one of the
// sources (broken pipe, invalid descriptor).
var ErrStream = errors.New("stream error")

// Run polls both descriptors and routes their bytes until each has
// reached end-of-stream: stdout bytes through the line buffer, stderr
// bytes straight to the sink.
//
// Each wake reads at most one byte from each ready source. That is the
// fairness contract: a burst on one stream cannot starve pending
// output on the other for longer than a single byte, and no ordering
// is imposed beyond what the kernel already decided.
//
// The wait blocks with no timeout, so the caller blocks until the
// child produces output or terminates. EINTR on the poll or on a read
// is retried; every other failure aborts the loop.
func Run(stdoutFD, stderrFD int, lines *render.LineBuffer, sink *render.Sink) error {
	fds := []unix.PollFd{
		{Fd: int32(stdoutFD), Events: unix.POLLIN | unix.POLLPRI},
		{Fd: int32(stderrFD), Events: unix.POLLIN | unix.POLLPRI},
	}

	for {
		if err := poll(fds); err != nil {
			return fmt.Errorf("poll: %w", err)
		}

		if fds[0].Revents&unix.POLLNVAL != 0 || fds[1].Revents&unix.POLLNVAL != 0 {
			return ErrStream
		}

		// stdout first, matching the fixed per-wake visit order.
		if fds[0].Revents&(unix.POLLIN|unix.POLLPRI|unix.POLLERR|unix.POLLHUP) != 0 {
			b, open, err := readByte(stdoutFD)
			if err != nil {
				return fmt.Errorf("read from stdout pipe: %w", err)
			}
			if !open {
				fds[0].Fd = -1 // retired: poll ignores negative fds
			} else if err := lines.Accept(b); err != nil {
				return err
			}
		}

		if fds[1].Revents&(unix.POLLIN|unix.POLLPRI|unix.POLLERR|unix.POLLHUP) != 0 {
			b, open, err := readByte(stderrFD)
			if err != nil {
				return fmt.Errorf("read from stderr pipe: %w", err)
			}
			if !open {
				fds[1].Fd = -1
			} else if err := sink.Write([]byte{b}, render.RoleStderr); err != nil {
				return err
			}
		}

		if fds[0].Fd < 0 && fds[1].Fd < 0 {
			return nil
		}
	}
}

func poll(fds []unix.PollFd) error {
	for {
		_, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

// readByte reads a single byte. open is false at end-of-stream: a
// zero-byte read on a pipe, or EIO on a pty master whose slave side
// has gone away.
func readByte(fd int) (b byte, open bool, err error) {
	var buf [1]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EIO {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, err
		}
		if n == 0 {
			return 0, false, nil
		}
		return buf[0], true, nil
	}
}
