package server

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robotalks/telecortex.go/pkg/env"
)

// Config provides the options of the controller.
type Config struct {
	// TransportURL is where host commands come from.
	// e.g. serial:///dev/ttyUSB0?baud=9600, mqtt://host:1883/prefix/,
	// ws://:8080/gcode, stdio:
	TransportURL string
	// StatusURL is an MQTT broker URL for publishing status, optional.
	StatusURL string

	QueueDepth         int
	MaxCommandSize     int
	RequireChecksum    bool
	RequireLineNumbers bool
	// FailWait is the delay following every reported error.
	FailWait time.Duration
	// Interval is the control loop period when idle.
	Interval       time.Duration
	StatusInterval time.Duration
	// RainbowsUntilGCode animates the panels until the first command.
	RainbowsUntilGCode bool

	LayoutFile   string
	EEPROMFile   string
	ControllerID string
	Brightness   int
}

var defaultConfig = Config{
	TransportURL:       "stdio:",
	QueueDepth:         5,
	MaxCommandSize:     2048,
	FailWait:           0,
	Interval:           100 * time.Millisecond,
	StatusInterval:     5 * time.Second,
	RainbowsUntilGCode: true,
	Brightness:         255,
}

func init() {
	defaultConfig.ControllerID = env.MachineID()
	if val := os.Getenv("CORTEX_TRANSPORT"); val != "" {
		defaultConfig.TransportURL = val
	}
	if val := os.Getenv("CORTEX_STATUS_URL"); val != "" {
		defaultConfig.StatusURL = val
	}
	if val := os.Getenv("CORTEX_LAYOUT"); val != "" {
		defaultConfig.LayoutFile = val
	}
	if val := os.Getenv("CORTEX_EEPROM"); val != "" {
		defaultConfig.EEPROMFile = val
	}
	if val := os.Getenv("CORTEX_ID"); val != "" {
		defaultConfig.ControllerID = val
	}
	if val, err := strconv.ParseBool(os.Getenv("CORTEX_REQUIRE_CHECKSUM")); err == nil {
		defaultConfig.RequireChecksum = val
	}
	if val, err := strconv.ParseBool(os.Getenv("CORTEX_REQUIRE_LINE_NUMBERS")); err == nil {
		defaultConfig.RequireLineNumbers = val
	}
	if val, err := strconv.Atoi(os.Getenv("CORTEX_QUEUE_DEPTH")); err == nil {
		defaultConfig.QueueDepth = val
	}
	if val, err := strconv.Atoi(os.Getenv("CORTEX_MAX_COMMAND_SIZE")); err == nil {
		defaultConfig.MaxCommandSize = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.TransportURL, "transport", defaultConfig.TransportURL, "Transport URL for host commands")
	flag.StringVar(&defaultConfig.StatusURL, "status", defaultConfig.StatusURL, "MQTT broker URL for status events")
	flag.IntVar(&defaultConfig.QueueDepth, "queue-depth", defaultConfig.QueueDepth, "Command queue depth")
	flag.IntVar(&defaultConfig.MaxCommandSize, "max-cmd-size", defaultConfig.MaxCommandSize, "Max command line length")
	flag.BoolVar(&defaultConfig.RequireChecksum, "require-checksum", defaultConfig.RequireChecksum, "Reject lines without checksum")
	flag.BoolVar(&defaultConfig.RequireLineNumbers, "require-line-numbers", defaultConfig.RequireLineNumbers, "Reject lines without line number")
	flag.DurationVar(&defaultConfig.FailWait, "fail-wait", defaultConfig.FailWait, "Delay after reporting an error")
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Control loop interval")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Status publishing interval")
	flag.BoolVar(&defaultConfig.RainbowsUntilGCode, "rainbows", defaultConfig.RainbowsUntilGCode, "Display rainbows until the first command")
	flag.StringVar(&defaultConfig.LayoutFile, "layout", defaultConfig.LayoutFile, "Panel layout YAML file")
	flag.StringVar(&defaultConfig.EEPROMFile, "eeprom", defaultConfig.EEPROMFile, "File backing the settings EEPROM")
	flag.StringVar(&defaultConfig.ControllerID, "id", defaultConfig.ControllerID, "Controller ID, defaults to machine ID")
	flag.IntVar(&defaultConfig.Brightness, "brightness", defaultConfig.Brightness, "Default brightness 0-255")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// MustNewServer creates a Server and fails on error.
func (c *Config) MustNewServer() *Env {
	s, err := c.NewServer()
	if err != nil {
		log.Fatalln(err)
	}
	return s
}
