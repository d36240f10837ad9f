package client

import (
	"flag"
	"log"
	"os"
	"time"
)

// Config provides common options to connect controllers.
type Config struct {
	// URL is the transport URL of the controller, host side.
	// e.g. serial:///dev/ttyUSB0, mqtt://host:1883/cortex/front, ws://host:8080/gcode
	URL string
	// RegistryURL is the MQTT broker where controllers publish status.
	RegistryURL string
	Timeout     time.Duration
	// Plain disables line numbers and checksums.
	Plain bool
}

var defaultConfig = Config{
	RegistryURL: "mqtt://localhost:1883/cortex/",
	Timeout:     DefaultTimeout,
}

func init() {
	if val := os.Getenv("CORTEX_URL"); val != "" {
		defaultConfig.URL = val
	}
	if val := os.Getenv("CORTEX_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.URL, "url", defaultConfig.URL, "Controller transport URL.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "MQTT broker URL for discovery.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Command response timeout.")
	flag.BoolVar(&defaultConfig.Plain, "plain", defaultConfig.Plain, "Send commands without line numbers and checksums.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Connect dials the controller at url, or the configured one if empty.
func (c *Config) Connect(url string) (*Client, error) {
	if url == "" {
		url = c.URL
	}
	cli, err := Dial(url)
	if err != nil {
		return nil, err
	}
	cli.Timeout = c.Timeout
	if c.Plain {
		cli.Writer.LineNumbers, cli.Writer.Checksums = false, false
	}
	return cli, nil
}

// MustConnect connects the controller and fails on error.
func (c *Config) MustConnect() *Client {
	cli, err := c.Connect("")
	if err != nil {
		log.Fatalln(err)
	}
	return cli
}
