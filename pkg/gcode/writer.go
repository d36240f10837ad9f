package gcode

import (
	"io"
	"strconv"
	"sync"
)

// LineWriter writes commands from the host side, decorating each line
// with a line number and a checksum.
type LineWriter struct {
	Writer      io.Writer
	LineNumbers bool
	Checksums   bool

	lineNum int64
	buf     []byte
	lock    sync.Mutex
}

// NewLineWriter creates a LineWriter numbering and checksumming lines.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{Writer: w, LineNumbers: true, Checksums: true}
}

// LineNum returns the number of the last written line.
func (w *LineWriter) LineNum() int64 {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.lineNum
}

// WriteCommand writes one command and returns the line number used,
// or -1 when lines aren't numbered.
func (w *LineWriter) WriteCommand(cmd []byte) (int64, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	lineNum := int64(-1)
	if w.LineNumbers {
		lineNum = w.lineNum + 1
	}
	w.buf = AppendLine(w.buf[:0], lineNum, cmd, w.Checksums)
	w.buf = append(w.buf, '\n')
	if _, err := w.Writer.Write(w.buf); err != nil {
		return lineNum, err
	}
	if w.LineNumbers {
		w.lineNum = lineNum
	}
	return lineNum, nil
}

// ResetLineNum sends M110 so the controller restarts numbering at n.
func (w *LineWriter) ResetLineNum(n int64) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.buf = AppendLine(w.buf[:0], n, []byte("M110"), w.Checksums)
	w.buf = append(w.buf, '\n')
	if _, err := w.Writer.Write(w.buf); err != nil {
		return err
	}
	w.lineNum = n
	return nil
}

// AppendLine appends "N<n> <cmd>*<checksum>". The line number is
// omitted when negative.
func AppendLine(dst []byte, lineNum int64, cmd []byte, checksum bool) []byte {
	start := len(dst)
	if lineNum >= 0 {
		dst = appendLineNum(dst, lineNum)
		dst = append(dst, ' ')
	}
	dst = append(dst, cmd...)
	if checksum {
		cs := Checksum(dst[start:])
		dst = append(dst, ChecksumMarker)
		dst = strconv.AppendUint(dst, uint64(cs), 10)
	}
	return dst
}

// AppendPixelCommand appends "M<code> Q<panel> S<offset> V<payload>",
// encoding one 4-symbol group per triple.
func AppendPixelCommand(dst []byte, code, panel, offset int, triples ...[3]byte) []byte {
	dst = append(dst, 'M')
	dst = strconv.AppendInt(dst, int64(code), 10)
	dst = append(dst, " Q"...)
	dst = strconv.AppendInt(dst, int64(panel), 10)
	dst = append(dst, " S"...)
	dst = strconv.AppendInt(dst, int64(offset), 10)
	dst = append(dst, " V"...)
	return AppendTriples(dst, triples...)
}
