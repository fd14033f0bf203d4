package render

// lineBufferSize bounds how much stdout is held back waiting for a
// newline. Pathological output with no newlines still makes progress
// one bufferful at a time.
const lineBufferSize = 1024

// LineBuffer batches stdout-role bytes into line-sized writes to the
// sink. stderr bytes bypass it, so a line of stdout reaches the
// terminal as a single write instead of a per-byte dribble.
type LineBuffer struct {
	sink *Sink
	buf  [lineBufferSize]byte
	n    int
}

func NewLineBuffer(sink *Sink) *LineBuffer {
	return &LineBuffer{sink: sink}
}

// Accept appends b to the buffer, flushing first if the buffer is
// full and flushing after storing a newline so the flushed chunk ends
// with the newline that completed it.
func (l *LineBuffer) Accept(b byte) error {
	if l.n >= len(l.buf) {
		if err := l.Flush(); err != nil {
			return err
		}
	}
	l.buf[l.n] = b
	l.n++
	if b == '\n' {
		return l.Flush()
	}
	return nil
}

// Flush writes the buffered bytes to the sink as one stdout-role write
// and resets the buffer. Flushing an empty buffer writes nothing and
// leaves the sink's highlight state alone.
func (l *LineBuffer) Flush() error {
	if l.n == 0 {
		return nil
	}
	err := l.sink.Write(l.buf[:l.n], RoleStdout)
	l.n = 0
	return err
}
