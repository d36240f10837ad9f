package gcode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// LineNumPrefix marks the optional line number.
	LineNumPrefix = 'N'
	// ChecksumMarker starts the checksum trailer.
	ChecksumMarker = '*'
	// UnknownLetter is the letter of a line without a valid command.
	UnknownLetter = '?'
)

// Command is one parsed line. It borrows the parsed buffer and is
// only valid while the buffer is untouched, e.g. until the queue slot
// is released.
type Command struct {
	Letter  byte
	Code    int
	LineNum int64

	text     []byte
	args     []byte
	value    []byte
	raw      []byte
	hasValue bool
}

// IsCommandLetter tells if c starts a command.
func IsCommandLetter(c byte) bool {
	switch c {
	case 'G', 'M', 'T', 'P':
		return true
	}
	return false
}

// Parse parses a line in a single forward scan. Lines without a command
// letter or code digits produce a Command with Letter set to
// UnknownLetter. The line is never modified.
func Parse(line []byte) (cmd Command) {
	cmd.Letter, cmd.LineNum = UnknownLetter, -1
	p := skipSpaces(line, 0)

	if p+1 < len(line) && line[p] == LineNumPrefix && isSignedDigit(line[p+1]) {
		p++
		n, end := scanLong(line, p)
		cmd.LineNum = n
		p = skipSpaces(line, end)
	}

	// trim the checksum trailer and the spaces before it
	end := len(line)
	for i := p; i < len(line); i++ {
		if line[i] == ChecksumMarker {
			end = i
			break
		}
	}
	for end > p && isSpace(line[end-1]) {
		end--
	}
	line = line[:end]
	cmd.text = line[p:]

	if p >= len(line) || !IsCommandLetter(line[p]) {
		return
	}
	letter := line[p]
	p = skipSpaces(line, p+1)
	if p >= len(line) || !isDigit(line[p]) {
		return
	}
	cmd.Letter = letter
	for ; p < len(line) && isDigit(line[p]); p++ {
		if cmd.Code < math.MaxInt32/10 {
			cmd.Code = cmd.Code*10 + int(line[p]-'0')
		}
	}
	cmd.args = line[skipSpaces(line, p):]
	return
}

// Valid tells if the line carried a command letter and a code.
func (c *Command) Valid() bool {
	return c.Letter != UnknownLetter
}

// Text returns the command text from the letter on, without the
// line number and checksum.
func (c *Command) Text() []byte {
	return c.text
}

// Args returns the argument region.
func (c *Command) Args() []byte {
	return c.args
}

// Is tells if the command is letter followed by code.
func (c *Command) Is(letter byte, code int) bool {
	return c.Letter == letter && c.Code == code
}

// Seen scans the arguments for a parameter. When found, the value
// following it becomes the current value for the accessors. A value
// follows the letter immediately, or after spaces when it starts
// numerically.
func (c *Command) Seen(letter byte) bool {
	c.value, c.raw, c.hasValue = nil, nil, false
	args := c.args
	for i := 0; i < len(args); {
		code := args[i]
		i++
		start, j := i, skipSpaces(args, i)
		if j > i {
			start = -1
			if j < len(args) && isNumericStart(args[j]) {
				start = j
			}
		}
		end := start
		if start >= 0 {
			for end < len(args) && isArgChar(args[end]) {
				end++
			}
		}
		if code == letter {
			if end > start {
				c.value, c.hasValue = args[start:end], true
			}
			k := i
			for k < len(args) && !isSpace(args[k]) {
				k++
			}
			c.raw = args[i:k]
			return true
		}
		if end > start {
			i = end
		}
		i = skipSpaces(args, i)
	}
	return false
}

// SeenVal tells if the parameter is present with a value.
func (c *Command) SeenVal(letter byte) bool {
	return c.Seen(letter) && c.hasValue
}

// SeenAny tells if there are any arguments.
func (c *Command) SeenAny() bool {
	return len(c.args) > 0
}

// Raw returns the text directly following the last seen parameter
// letter up to the next space, whether or not it forms a value.
func (c *Command) Raw() []byte {
	return c.raw
}

// HasValue tells if the last seen parameter carries a value.
func (c *Command) HasValue() bool {
	return c.hasValue
}

// Bytes returns the raw value of the last seen parameter.
func (c *Command) Bytes() []byte {
	return c.value
}

// Float interprets the value as a decimal number. An 'E' following
// the digits is never taken as an exponent.
func (c *Command) Float() float64 {
	v := c.value
	n := 0
	if n < len(v) && (v[n] == '-' || v[n] == '+') {
		n++
	}
	for n < len(v) && isDigit(v[n]) {
		n++
	}
	if n < len(v) && v[n] == '.' {
		n++
		for n < len(v) && isDigit(v[n]) {
			n++
		}
	}
	f, err := strconv.ParseFloat(string(v[:n]), 64)
	if err != nil {
		return 0
	}
	return f
}

// Long interprets the value as a signed 32-bit integer, saturating
// on overflow.
func (c *Command) Long() int32 {
	if len(c.value) == 0 {
		return 0
	}
	n, _ := scanLong(c.value, 0)
	return int32(n)
}

// ULong interprets the value as an unsigned 32-bit integer. Negative
// values wrap around.
func (c *Command) ULong() uint32 {
	v := c.value
	if len(v) > 0 && v[0] == '-' {
		return uint32(c.Long())
	}
	if len(v) > 0 && v[0] == '+' {
		v = v[1:]
	}
	var n uint64
	for i := 0; i < len(v) && isDigit(v[i]); i++ {
		if n = n*10 + uint64(v[i]-'0'); n > math.MaxUint32 {
			return math.MaxUint32
		}
	}
	return uint32(n)
}

// Int interprets the value as int16.
func (c *Command) Int() int16 {
	return int16(c.Long())
}

// UShort interprets the value as uint16.
func (c *Command) UShort() uint16 {
	return uint16(c.Long())
}

// Byte interprets the value as an integer clamped to [0, 255].
func (c *Command) Byte() byte {
	n := c.Long()
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return byte(n)
}

// Bool is true for a flag without value or a nonzero value.
func (c *Command) Bool() bool {
	return !c.hasValue || c.Byte() != 0
}

// Millis interprets the value as milliseconds.
func (c *Command) Millis() uint32 {
	return c.ULong()
}

// MillisFromSeconds interprets the value as seconds, in milliseconds.
func (c *Command) MillisFromSeconds() uint32 {
	return uint32(c.Float() * 1000)
}

// FloatVal returns the parameter value or def.
func (c *Command) FloatVal(letter byte, def float64) float64 {
	if c.SeenVal(letter) {
		return c.Float()
	}
	return def
}

// BoolVal returns the parameter value, or if the parameter is present.
func (c *Command) BoolVal(letter byte) bool {
	if c.SeenVal(letter) {
		return c.Bool()
	}
	return c.Seen(letter)
}

// ByteVal returns the parameter value or def.
func (c *Command) ByteVal(letter byte, def byte) byte {
	if c.SeenVal(letter) {
		return c.Byte()
	}
	return def
}

// IntVal returns the parameter value or def.
func (c *Command) IntVal(letter byte, def int16) int16 {
	if c.SeenVal(letter) {
		return c.Int()
	}
	return def
}

// UShortVal returns the parameter value or def.
func (c *Command) UShortVal(letter byte, def uint16) uint16 {
	if c.SeenVal(letter) {
		return c.UShort()
	}
	return def
}

// LongVal returns the parameter value or def.
func (c *Command) LongVal(letter byte, def int32) int32 {
	if c.SeenVal(letter) {
		return c.Long()
	}
	return def
}

// ULongVal returns the parameter value or def.
func (c *Command) ULongVal(letter byte, def uint32) uint32 {
	if c.SeenVal(letter) {
		return c.ULong()
	}
	return def
}

// String dumps the command for diagnostics.
func (c *Command) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%c %d)", c.text, c.Letter, c.Code)
	if c.LineNum >= 0 {
		fmt.Fprintf(&sb, " line %d", c.LineNum)
	}
	if len(c.args) > 0 {
		fmt.Fprintf(&sb, " args %q", c.args)
	}
	return sb.String()
}

func scanLong(s []byte, p int) (int64, int) {
	neg := false
	if p < len(s) && (s[p] == '-' || s[p] == '+') {
		neg = s[p] == '-'
		p++
	}
	var n int64
	for ; p < len(s) && isDigit(s[p]); p++ {
		if n <= math.MaxInt32 {
			n = n*10 + int64(s[p]-'0')
		}
	}
	if neg {
		n = -n
		if n < math.MinInt32 {
			n = math.MinInt32
		}
	} else if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	return n, p
}

func skipSpaces(s []byte, p int) int {
	for p < len(s) && isSpace(s[p]) {
		p++
	}
	return p
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isSignedDigit(c byte) bool {
	return isDigit(c) || c == '-'
}

func isNumericStart(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.'
}

func isArgChar(c byte) bool {
	switch {
	case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', isDigit(c):
		return true
	}
	switch c {
	case '+', '/', '=', '-', '.':
		return true
	}
	return false
}
