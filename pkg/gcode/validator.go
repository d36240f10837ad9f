package gcode

// Validator checks the checksum trailer and line numbering of
// incoming lines before they are queued. Line numbers must be
// consecutive only with RequireLineNumbers, otherwise they are
// tracked as they come.
type Validator struct {
	RequireChecksum    bool
	RequireLineNumbers bool

	lastLine int64
}

// LastLine returns the last accepted line number.
func (v *Validator) LastLine() int64 {
	return v.lastLine
}

// Reset sets the last accepted line number.
func (v *Validator) Reset(lastLine int64) {
	v.lastLine = lastLine
}

// Validate checks a line. A line carrying M110 sets the line number
// instead of being checked against it.
func (v *Validator) Validate(line []byte) *Error {
	cmd := Parse(line)
	if err := v.checksum(line, cmd.LineNum); err != nil {
		return err
	}
	if cmd.Is('M', 110) {
		if cmd.LineNum >= 0 {
			v.lastLine = cmd.LineNum
		} else if cmd.SeenVal('N') {
			v.lastLine = int64(cmd.Long())
		} else {
			v.lastLine = 0
		}
		return nil
	}
	if cmd.LineNum < 0 {
		if v.RequireLineNumbers {
			return NewError(CodeLineNumber, "No Line Number with checksum, Last Line: %d", v.lastLine)
		}
		return nil
	}
	if v.RequireLineNumbers && cmd.LineNum != v.lastLine+1 {
		return NewError(CodeLineNumber, "Line Number is not Last Line Number+1, Last Line: %d", v.lastLine).
			WithLineNum(cmd.LineNum)
	}
	v.lastLine = cmd.LineNum
	return nil
}

func (v *Validator) checksum(line []byte, lineNum int64) *Error {
	pos := -1
	for i, c := range line {
		if c == ChecksumMarker {
			pos = i
			break
		}
	}
	if pos < 0 {
		if v.RequireChecksum {
			return NewError(CodeChecksum, "No Checksum with line number, Last Line: %d", v.lastLine).
				WithLineNum(lineNum)
		}
		return nil
	}
	expected, p := scanLong(line, pos+1)
	if p == pos+1 || expected != int64(Checksum(line[:pos])) {
		return NewError(CodeChecksum, "checksum mismatch, Last Line: %d", v.lastLine).
			WithLineNum(lineNum)
	}
	return nil
}

// Checksum is the XOR of all bytes.
func Checksum(line []byte) byte {
	var cs byte
	for _, c := range line {
		cs ^= c
	}
	return cs
}
