package gcode

import "strconv"

// CommentMarker starts an informational line, never enqueued.
const CommentMarker = ';'

// Idle is written once the queue drains.
const Idle = "IDLE"

// AppendOK appends "N<n>: OK", or "OK" when lineNum is negative.
func AppendOK(dst []byte, lineNum int64) []byte {
	if lineNum >= 0 {
		dst = appendLineNum(dst, lineNum)
		dst = append(dst, ':', ' ')
	}
	return append(dst, "OK"...)
}

// AppendError appends "E<ccc>: <msg>", prefixed by "N<n> " when
// lineNum is not negative.
func AppendError(dst []byte, lineNum int64, code int, msg string) []byte {
	if lineNum >= 0 {
		dst = appendLineNum(dst, lineNum)
		dst = append(dst, ' ')
	}
	dst = append(dst, 'E')
	if code < 100 {
		dst = append(dst, '0')
	}
	if code < 10 {
		dst = append(dst, '0')
	}
	dst = strconv.AppendInt(dst, int64(code), 10)
	dst = append(dst, ':', ' ')
	return append(dst, msg...)
}

// AppendComment appends ";<msg>".
func AppendComment(dst []byte, msg string) []byte {
	dst = append(dst, CommentMarker)
	return append(dst, msg...)
}

func appendLineNum(dst []byte, n int64) []byte {
	return strconv.AppendInt(append(dst, 'N'), n, 10)
}
