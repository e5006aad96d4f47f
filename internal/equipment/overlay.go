package equipment

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overlay extends or replaces the built-in equipment tables from a user
// YAML file. Overlay entries are consulted before the built-in tables.
type Overlay struct {
	Consoles []OverlayConsole `yaml:"consoles"`
	PAs      []OverlayPA      `yaml:"pa_systems"`
}

// OverlayConsole pairs a match key with a console profile.
type OverlayConsole struct {
	Match   string         `yaml:"match"`
	Profile ConsoleProfile `yaml:",inline"`
}

// OverlayPA pairs a match key with a PA profile.
type OverlayPA struct {
	Match   string    `yaml:"match"`
	Profile PAProfile `yaml:",inline"`
}

// LoadOverlay reads an overlay file. A missing file is not an error; it
// yields an empty overlay.
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Overlay{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading equipment overlay: %w", err)
	}

	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing equipment overlay %s: %w", path, err)
	}
	for i, c := range o.Consoles {
		if c.Match == "" {
			return nil, fmt.Errorf("equipment overlay %s: console entry %d has no match key", path, i)
		}
	}
	for i, p := range o.PAs {
		if p.Match == "" {
			return nil, fmt.Errorf("equipment overlay %s: pa entry %d has no match key", path, i)
		}
	}
	return &o, nil
}

// NewStaticProviderWithOverlay layers overlay entries over the built-in
// tables.
func NewStaticProviderWithOverlay(o *Overlay) *StaticProvider {
	p := NewStaticProvider()
	if o == nil {
		return p
	}
	for _, c := range o.Consoles {
		profile := c.Profile
		profile.Known = true
		p.overlayConsoles = append(p.overlayConsoles, struct {
			key     string
			profile ConsoleProfile
		}{key: normalize(c.Match), profile: profile})
	}
	for _, pa := range o.PAs {
		profile := pa.Profile
		profile.Known = true
		p.overlayPAs = append(p.overlayPAs, struct {
			key     string
			profile PAProfile
		}{key: normalize(pa.Match), profile: profile})
	}
	return p
}

func containsKey(normalized, key string) bool {
	return key != "" && strings.Contains(normalized, key)
}
