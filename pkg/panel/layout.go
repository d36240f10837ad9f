package panel

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"
)

// PanelConfig describes one panel.
type PanelConfig struct {
	Name   string `yaml:"name,omitempty"`
	Length int    `yaml:"length"`
}

// Layout describes all panels attached to the controller.
type Layout struct {
	Panels []PanelConfig `yaml:"panels"`
}

// DefaultLayout is four panels of 333, 260, 333 and 333 pixels.
func DefaultLayout() *Layout {
	return &Layout{
		Panels: []PanelConfig{
			{Name: "panel0", Length: 333},
			{Name: "panel1", Length: 260},
			{Name: "panel2", Length: 333},
			{Name: "panel3", Length: 333},
		},
	}
}

// LoadLayout reads a layout from a YAML file.
func LoadLayout(fn string) (*Layout, error) {
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		return nil, fmt.Errorf("read layout %s error: %w", fn, err)
	}
	return ParseLayout(data)
}

// ParseLayout parses a YAML layout.
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout error: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the layout is usable.
func (l *Layout) Validate() error {
	if len(l.Panels) == 0 {
		return fmt.Errorf("layout has no panels")
	}
	for n, p := range l.Panels {
		if p.Length <= 0 {
			return fmt.Errorf("panel %d has invalid length %d", n, p.Length)
		}
	}
	return nil
}

// PixelCount returns the total number of pixels.
func (l *Layout) PixelCount() (n int) {
	for _, p := range l.Panels {
		n += p.Length
	}
	return
}

// Marshal encodes the layout as YAML.
func (l *Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}
