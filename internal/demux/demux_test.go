package demux

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"hlerr/internal/render"
)

// pipePair is a pre-filled pipe: the write end is closed once the test
// data is in, so the loop observes data followed by end-of-stream.
func pipePair(t *testing.T, data string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	_, err = w.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return r
}

func TestRunStdoutOnly(t *testing.T) {
	stdout := pipePair(t, "hello\nworld\n")
	stderr := pipePair(t, "")

	var buf bytes.Buffer
	sink := render.NewSink(&buf, &buf, true)
	lines := render.NewLineBuffer(sink)

	require.NoError(t, Run(int(stdout.Fd()), int(stderr.Fd()), lines, sink))
	require.NoError(t, lines.Flush())

	require.Equal(t, "hello\nworld\n", buf.String())
}

func TestRunStderrOnly(t *testing.T) {
	stdout := pipePair(t, "")
	stderr := pipePair(t, "oops")

	var buf bytes.Buffer
	sink := render.NewSink(&buf, &buf, true)
	lines := render.NewLineBuffer(sink)

	require.NoError(t, Run(int(stdout.Fd()), int(stderr.Fd()), lines, sink))
	require.NoError(t, lines.Flush())

	// One contiguous span, one begin marker, no redundant markers
	// between the per-byte writes.
	require.Equal(t, "\x1b[31moops", buf.String())
}

func TestRunInterleavesByteWise(t *testing.T) {
	// Both pipes are full before the loop starts, so every wake sees
	// both sources ready and takes one byte from each. stderr bytes
	// reach the sink immediately; stdout bytes sit in the line buffer
	// until their newline arrives.
	stdout := pipePair(t, "out\n")
	stderr := pipePair(t, "err")

	var buf bytes.Buffer
	sink := render.NewSink(&buf, &buf, true)
	lines := render.NewLineBuffer(sink)

	require.NoError(t, Run(int(stdout.Fd()), int(stderr.Fd()), lines, sink))
	require.NoError(t, lines.Flush())

	require.Equal(t, "\x1b[31merr\x1b[mout\n", buf.String())
}

func TestRunEndOfStreamWithoutData(t *testing.T) {
	stdout := pipePair(t, "")
	stderr := pipePair(t, "")

	var buf bytes.Buffer
	sink := render.NewSink(&buf, &buf, true)
	lines := render.NewLineBuffer(sink)

	require.NoError(t, Run(int(stdout.Fd()), int(stderr.Fd()), lines, sink))
	require.NoError(t, lines.Flush())

	require.Zero(t, buf.Len())
}

func TestRunInvalidDescriptorIsFatal(t *testing.T) {
	// A descriptor closed before the loop starts reports POLLNVAL.
	// The valid pipe is created first so its descriptors cannot reuse
	// the numbers freed below.
	stderr := pipePair(t, "pending")

	fds := make([]int, 2)
	require.NoError(t, unix.Pipe(fds))
	require.NoError(t, unix.Close(fds[0]))
	require.NoError(t, unix.Close(fds[1]))

	var buf bytes.Buffer
	sink := render.NewSink(&buf, &buf, true)
	lines := render.NewLineBuffer(sink)

	err := Run(fds[0], int(stderr.Fd()), lines, sink)
	require.ErrorIs(t, err, ErrStream)
}
