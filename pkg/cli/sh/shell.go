// Package sh provides the interactive console of the host.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/telecortex.go/pkg/client"
	"github.com/robotalks/telecortex.go/pkg/transport/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *client.Config
	Client *client.Client
	URL    string
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&RawCmd,
		&LineNumCmd,
		&PortsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *client.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Client == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// DoCommand sends a command line and prints the response.
func DoCommand(c *ishell.Context, cmd []byte) (*client.Response, error) {
	s := ShellFrom(c)
	if s.Client == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return nil, err
	}
	resp, err := s.Client.Do(context.Background(), cmd)
	if err != nil {
		c.Err(err)
		return nil, err
	}
	s.PrintResponse(c, resp)
	return resp, resp.Err()
}

// PrintResponse prints a response with its comments.
func (s *Shell) PrintResponse(c *ishell.Context, resp *client.Response) {
	if s.OutputJSON {
		out, err := json.Marshal(resp)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	for _, comment := range resp.Comments {
		c.Println(";" + comment)
	}
	c.Println(resp.String())
}

// Connect connects the controller at url.
func (s *Shell) Connect(url string) error {
	cli, err := s.Config.Connect(url)
	if err != nil {
		return err
	}
	s.Disconnect()
	s.Client, s.URL = cli, url
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", url))
	return nil
}

// Disconnect disconnects current controller.
func (s *Shell) Disconnect() {
	if s.Client != nil {
		s.Client.Close()
		s.Client = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.URL != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.URL)
		}
		if err := s.Connect(s.Config.URL); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.URL, err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd lists controllers publishing status.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "[REGISTRY_URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			registry := s.Config.RegistryURL
			if len(c.Args) > 0 {
				registry = c.Args[0]
			}
			infoList, err := client.Discover(context.Background(), registry, 0)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "URL",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("URL expected"))
				return
			}
			if err := ShellFrom(c).Connect(c.Args[0]); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// RawCmd sends a command line as typed.
	RawCmd = ishell.Cmd{
		Name:    "raw",
		Aliases: []string{"send", "g"},
		Help:    "COMMAND...",
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("command expected"))
				return
			}
			DoCommand(c, []byte(strings.Join(c.Args, " ")))
		}),
	}

	// LineNumCmd restarts line numbering.
	LineNumCmd = ishell.Cmd{
		Name: "linenum",
		Help: "[N]",
		Func: MustBeConnected(func(c *ishell.Context) {
			var n int64
			if len(c.Args) > 0 {
				if _, err := fmt.Sscanf(c.Args[0], "%d", &n); err != nil {
					c.Err(err)
					return
				}
			}
			s := ShellFrom(c)
			resp, err := s.Client.ResetLineNum(context.Background(), n)
			if err != nil {
				c.Err(err)
				return
			}
			s.PrintResponse(c, resp)
		}),
	}

	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name: "ports",
		Func: func(c *ishell.Context) {
			ports, err := serial.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			for _, port := range ports {
				c.Println("serial://" + port)
			}
		},
	}
)

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info client.ControllerInfo) string {
	var b strings.Builder
	b.WriteString(info.ID)
	if info.Meta.Description != "" {
		fmt.Fprintf(&b, ": %s", info.Meta.Description)
	}
	if info.Meta.Transport != "" {
		fmt.Fprintf(&b, " (%s)", info.Meta.Transport)
	}
	for n, name := range info.Meta.Panels {
		fmt.Fprintf(&b, "\n  %s", name)
		if n < len(info.Meta.Pixels) {
			fmt.Fprintf(&b, ": %d pixels", info.Meta.Pixels[n])
		}
	}
	return b.String()
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(client.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}
