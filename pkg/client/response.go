package client

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/robotalks/telecortex.go/pkg/gcode"
)

// Response is a line sent back by the controller.
type Response struct {
	// LineNum is -1 when the response isn't bound to a line.
	LineNum int64
	// Code is 0 for OK.
	Code    int
	Message string
	// Comments are the comment lines received before the response.
	Comments []string
}

// OK tells if the command succeeded.
func (r *Response) OK() bool {
	return r.Code == 0
}

// Err converts an error response into *gcode.Error.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &gcode.Error{Code: r.Code, LineNum: r.LineNum, Message: r.Message}
}

// String implements Stringer.
func (r *Response) String() string {
	if r.OK() {
		return string(gcode.AppendOK(nil, r.LineNum))
	}
	return string(gcode.AppendError(nil, r.LineNum, r.Code, r.Message))
}

// ParseResponse parses a response line without the line ending.
// Comment lines return comment true.
func ParseResponse(line []byte) (resp Response, comment bool, err error) {
	line = bytes.TrimSpace(line)
	if len(line) > 0 && line[0] == gcode.CommentMarker {
		return Response{LineNum: -1, Message: string(bytes.TrimSpace(line[1:]))}, true, nil
	}
	resp.LineNum = -1
	if len(line) > 0 && line[0] == gcode.LineNumPrefix {
		end := 1
		for end < len(line) && (line[end] == '-' || (line[end] >= '0' && line[end] <= '9')) {
			end++
		}
		n, e := strconv.ParseInt(string(line[1:end]), 10, 64)
		if e != nil {
			return resp, false, fmt.Errorf("invalid line number in %q", line)
		}
		resp.LineNum = n
		line = bytes.TrimLeft(line[end:], " :")
	}
	switch {
	case bytes.Equal(line, []byte("OK")):
		return resp, false, nil
	case len(line) >= 4 && line[0] == 'E':
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			colon = len(line)
		}
		code, e := strconv.Atoi(string(line[1:colon]))
		if e != nil || code == 0 {
			return resp, false, fmt.Errorf("invalid error code in %q", line)
		}
		resp.Code = code
		if colon < len(line) {
			resp.Message = string(bytes.TrimSpace(line[colon+1:]))
		}
		return resp, false, nil
	}
	return resp, false, fmt.Errorf("unrecognized response %q", line)
}
