// Package panel provides console commands driving the LED panels.
package panel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/robotalks/telecortex.go/pkg/cli/sh"
	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/server"
)

// MaxPixelsPerLine splits long pixel runs into multiple commands.
const MaxPixelsPerLine = 128

// ParseColor parses "#rrggbb", "rrggbb" or "h,s,v" in 0-255 into a
// triple. HSV is reported by hsv.
func ParseColor(s string) (triple [3]byte, hsv bool, err error) {
	if parts := strings.Split(s, ","); len(parts) == 3 {
		for n, part := range parts {
			v, e := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if e != nil {
				return triple, true, fmt.Errorf("invalid HSV component %q", part)
			}
			triple[n] = byte(v)
		}
		return triple, true, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if !isHexColor(hex) {
		return triple, false, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return triple, false, fmt.Errorf("invalid color %q", s)
	}
	triple[0], triple[1], triple[2] = c.RGB255()
	return triple, false, nil
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func parseColors(args []string) (triples [][3]byte, hsv bool, err error) {
	for n, arg := range args {
		triple, isHSV, e := ParseColor(arg)
		if e != nil {
			return nil, false, e
		}
		if n > 0 && isHSV != hsv {
			return nil, false, fmt.Errorf("RGB and HSV colors mixed")
		}
		hsv = isHSV
		triples = append(triples, triple)
	}
	return
}

func parseInts(args ...string) ([]int, error) {
	vals := make([]int, len(args))
	for n, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", arg)
		}
		vals[n] = v
	}
	return vals, nil
}

// PixelCommands builds set-pixel commands, splitting long runs.
func PixelCommands(panel, offset int, hsv bool, triples [][3]byte) [][]byte {
	code := server.CodeSetPixelsRGB
	if hsv {
		code = server.CodeSetPixelsHSV
	}
	var cmds [][]byte
	for start := 0; start < len(triples); start += MaxPixelsPerLine {
		end := start + MaxPixelsPerLine
		if end > len(triples) {
			end = len(triples)
		}
		cmds = append(cmds, gcode.AppendPixelCommand(nil, code, panel, offset+start, triples[start:end]...))
	}
	return cmds
}

// FillCommand builds a fill command.
func FillCommand(panel, offset int, hsv bool, triple [3]byte) []byte {
	code := server.CodeFillPanelRGB
	if hsv {
		code = server.CodeFillPanelHSV
	}
	return gcode.AppendPixelCommand(nil, code, panel, offset, triple)
}

// Rainbow builds the pixels of a rainbow across n pixels.
func Rainbow(n int, hue float64) [][3]byte {
	triples := make([][3]byte, n)
	for i := range triples {
		h := hue + 360*float64(i)/float64(n)
		for h >= 360 {
			h -= 360
		}
		r, g, b := colorful.Hsv(h, 1, 1).RGB255()
		triples[i] = [3]byte{r, g, b}
	}
	return triples
}

func doAll(c *ishell.Context, cmds ...[]byte) bool {
	for _, cmd := range cmds {
		if _, err := sh.DoCommand(c, cmd); err != nil {
			return false
		}
	}
	return true
}

func simpleCmd(name string, code int, help string) *ishell.Cmd {
	return &ishell.Cmd{
		Name: name,
		Help: help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, []byte("M"+strconv.Itoa(code)))
		}),
	}
}

var (
	// PixelsCmd sets consecutive pixels.
	PixelsCmd = ishell.Cmd{
		Name:    "pixels",
		Aliases: []string{"px"},
		Help:    "PANEL OFFSET COLOR...  COLOR is rrggbb or h,s,v",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 3 {
				c.Err(fmt.Errorf("PANEL OFFSET COLOR... expected"))
				return
			}
			vals, err := parseInts(c.Args[:2]...)
			if err != nil {
				c.Err(err)
				return
			}
			triples, hsv, err := parseColors(c.Args[2:])
			if err != nil {
				c.Err(err)
				return
			}
			doAll(c, PixelCommands(vals[0], vals[1], hsv, triples)...)
		}),
	}

	// FillCmd fills a panel from an offset.
	FillCmd = ishell.Cmd{
		Name:    "fill",
		Aliases: []string{"f"},
		Help:    "PANEL COLOR [OFFSET]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PANEL COLOR expected"))
				return
			}
			args := []string{c.Args[0], "0"}
			if len(c.Args) > 2 {
				args[1] = c.Args[2]
			}
			vals, err := parseInts(args...)
			if err != nil {
				c.Err(err)
				return
			}
			triple, hsv, err := ParseColor(c.Args[1])
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, FillCommand(vals[0], vals[1], hsv, triple))
		}),
	}

	// RainbowCmd draws a rainbow on a panel and shows it.
	RainbowCmd = ishell.Cmd{
		Name: "rainbow",
		Help: "PANEL LENGTH [HUE]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("PANEL LENGTH expected"))
				return
			}
			vals, err := parseInts(c.Args[:2]...)
			if err != nil {
				c.Err(err)
				return
			}
			var hue float64
			if len(c.Args) > 2 {
				if hue, err = strconv.ParseFloat(c.Args[2], 64); err != nil {
					c.Err(err)
					return
				}
			}
			cmds := PixelCommands(vals[0], 0, false, Rainbow(vals[1], hue))
			if doAll(c, cmds...) {
				sh.DoCommand(c, []byte("M"+strconv.Itoa(server.CodeShow)))
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&PixelsCmd,
		&FillCmd,
		&RainbowCmd,
		simpleCmd("show", server.CodeShow, "Push pixels to the panels"),
		simpleCmd("noop", server.CodeNoOp, "Reserved no-op"),
		simpleCmd("save", server.CodeSaveSettings, "Save settings to EEPROM"),
		simpleCmd("load", server.CodeLoadSettings, "Load settings from EEPROM"),
		simpleCmd("reset", server.CodeResetSettings, "Restore default settings"),
		simpleCmd("report", server.CodeReportSettings, "Report settings"),
	)
}
