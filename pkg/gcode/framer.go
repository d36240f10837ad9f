package gcode

// FrameResult is the outcome of feeding one byte to the Framer.
type FrameResult struct {
	// Line is set when a line completes. It is borrowed from the
	// Framer and only valid until the next call to Parse.
	Line []byte
	// Overflow is set when a line longer than the buffer was discarded.
	Overflow bool
}

type frameState int

const (
	stateLine     frameState = iota // accumulating a line
	stateComment                    // skipping a comment till end of line
	stateOverflow                   // skipping an overlong line
)

// Framer splits a byte stream into lines. CR and LF both end a line,
// text after a ';' is dropped, NUL bytes are ignored.
type Framer struct {
	buf   []byte
	n     int
	state frameState
}

// NewFramer creates a Framer for lines of at most maxSize bytes.
func NewFramer(maxSize int) *Framer {
	return &Framer{buf: make([]byte, maxSize)}
}

// Reset discards the partial line.
func (f *Framer) Reset() {
	f.n, f.state = 0, stateLine
}

// Parse consumes one byte.
func (f *Framer) Parse(b byte) (fr FrameResult) {
	switch b {
	case 0:
		return
	case '\r', '\n':
		if f.state == stateOverflow {
			fr.Overflow = true
		} else if n := trimRight(f.buf[:f.n]); n > 0 {
			fr.Line = f.buf[:n]
		}
		f.Reset()
		return
	}
	switch f.state {
	case stateLine:
		if b == CommentMarker {
			f.state = stateComment
			return
		}
		if f.n >= len(f.buf) {
			f.state = stateOverflow
			return
		}
		f.buf[f.n] = b
		f.n++
	}
	return
}

func trimRight(s []byte) int {
	n := len(s)
	for n > 0 && isSpace(s[n-1]) {
		n--
	}
	return n
}
