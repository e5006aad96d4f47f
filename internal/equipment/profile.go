// Package equipment resolves mixing console and PA system names to
// capability profiles. Profiles come from a built-in table, optional YAML
// overlays, or a remote spec service, and drive which mixing approaches the
// diagnostic engine may suggest.
package equipment

import "strings"

// ConsoleProfile describes the processing available on a mixing console.
type ConsoleProfile struct {
	Name         string     `yaml:"name" json:"name"`
	EQBands      int        `yaml:"eq_bands" json:"eq_bands"`
	EQType       string     `yaml:"eq_type" json:"eq_type"`
	GainRangeDB  [2]float64 `yaml:"gain_range_db" json:"gain_range_db"`
	QRange       [2]float64 `yaml:"q_range" json:"q_range"`
	CompModels   []string   `yaml:"comp_models" json:"comp_models"`
	HasDeEsser   bool       `yaml:"has_de_esser" json:"has_de_esser"`
	HasDynamicEQ bool       `yaml:"has_dynamic_eq" json:"has_dynamic_eq"`
	HPFSlopes    []string   `yaml:"hpf_slopes" json:"hpf_slopes"`

	// Tier ranks overall output quality for cross-session level
	// comparison. 1.0 is the reference class.
	Tier float64 `yaml:"tier" json:"tier"`

	// Known is false for the fallback profile returned when the name
	// matched nothing.
	Known bool `yaml:"-" json:"known"`
}

// PAProfile describes the deployed loudspeaker system.
type PAProfile struct {
	Name            string  `yaml:"name" json:"name"`
	Category        string  `yaml:"category" json:"category"`
	LowExtensionHz  float64 `yaml:"low_extension_hz" json:"low_extension_hz"`
	HighExtensionHz float64 `yaml:"high_extension_hz" json:"high_extension_hz"`

	// Brightness rates the high-frequency voicing relative to a neutral
	// system. Positive values mean a forward top end.
	Brightness float64 `yaml:"brightness" json:"brightness"`

	// Notes are voicing characteristics worth knowing at the desk.
	Notes []string `yaml:"notes" json:"notes,omitempty"`

	// CompensationEQ suggests system EQ moves that flatten the voicing.
	CompensationEQ []string `yaml:"compensation_eq" json:"compensation_eq,omitempty"`

	// FeedbackProneHz lists frequencies that ring first on this system.
	FeedbackProneHz []float64 `yaml:"feedback_prone_hz" json:"feedback_prone_hz,omitempty"`

	Known bool `yaml:"-" json:"known"`
}

var standardHPFSlopes = []string{"12dB/oct", "24dB/oct"}

// knownConsoles is matched by substring against the normalized console
// name, in order. More specific keys come before generic ones.
var knownConsoles = []struct {
	key     string
	profile ConsoleProfile
}{
	{"cl", ConsoleProfile{
		Name:         "Yamaha CL",
		EQBands:      8,
		EQType:       "Parametric",
		GainRangeDB:  [2]float64{-18, 18},
		QRange:       [2]float64{0.1, 10},
		CompModels:   []string{"Comp260", "U76", "Opt-2A"},
		HasDeEsser:   true,
		HasDynamicEQ: true,
		HPFSlopes:    standardHPFSlopes,
		Tier:         1.0,
		Known:        true,
	}},
	{"ql", ConsoleProfile{
		Name:        "Yamaha QL",
		EQBands:     8,
		EQType:      "Parametric",
		GainRangeDB: [2]float64{-18, 18},
		QRange:      [2]float64{0.1, 10},
		CompModels:  []string{"Comp260", "U76", "Opt-2A"},
		HasDeEsser:  true,
		HPFSlopes:   standardHPFSlopes,
		Tier:        0.8,
		Known:       true,
	}},
	{"sq", ConsoleProfile{
		Name:        "Allen & Heath SQ",
		EQBands:     4,
		EQType:      "Parametric",
		GainRangeDB: [2]float64{-15, 15},
		QRange:      [2]float64{0.5, 10},
		CompModels:  []string{"Standard", "Vintage"},
		HasDeEsser:  true,
		HPFSlopes:   standardHPFSlopes,
		Tier:        0.7,
		Known:       true,
	}},
	{"x32", ConsoleProfile{
		Name:        "Behringer X32",
		EQBands:     4,
		EQType:      "Parametric",
		GainRangeDB: [2]float64{-15, 15},
		QRange:      [2]float64{0.3, 10},
		CompModels:  []string{"Standard", "Vintage"},
		HPFSlopes:   standardHPFSlopes,
		Tier:        0.5,
		Known:       true,
	}},
}

// knownPAs is matched by brand substring against the normalized PA name.
var knownPAs = []struct {
	key     string
	profile PAProfile
}{
	{"d&b", PAProfile{
		Name:            "d&b audiotechnik",
		Category:        "Line Array / Point Source",
		LowExtensionHz:  45,
		HighExtensionHz: 18000,
		Notes:           []string{"very flat response", "strong below 60Hz", "slight 2-4kHz peak"},
		CompensationEQ:  []string{"2.5kHz Q=2.0 -1.5dB", "100Hz Q=1.0 +1dB"},
		FeedbackProneHz: []float64{250, 500, 2000, 4000},
		Known:           true,
	}},
	{"jbl", PAProfile{
		Name:            "JBL Professional",
		Category:        "Line Array / Point Source",
		LowExtensionHz:  50,
		HighExtensionHz: 20000,
		Brightness:      2,
		Notes:           []string{"bright top end (6-10kHz)", "punchy low end", "forward character"},
		CompensationEQ:  []string{"8kHz Q=1.5 -2dB", "80Hz Q=1.0 +1.5dB"},
		FeedbackProneHz: []float64{315, 630, 2500, 5000},
		Known:           true,
	}},
	{"l-acoustics", PAProfile{
		Name:            "L-Acoustics",
		Category:        "Line Array / Point Source",
		LowExtensionHz:  50,
		HighExtensionHz: 20000,
		Notes:           []string{"well balanced", "natural voicing, minimal correction needed"},
		FeedbackProneHz: []float64{250, 500, 2000, 4000},
		Known:           true,
	}},
	{"meyer", PAProfile{
		Name:            "Meyer Sound",
		Category:        "Line Array / Point Source",
		LowExtensionHz:  48,
		HighExtensionHz: 18000,
		Notes:           []string{"flat and accurate", "excellent low-end control"},
		Known:           true,
	}},
	{"ev", PAProfile{
		Name:            "Electro-Voice",
		Category:        "Line Array / Point Source",
		LowExtensionHz:  55,
		HighExtensionHz: 19000,
		Notes:           []string{"strong midrange presence", "bright-ish top", "high vocal clarity"},
		Known:           true,
	}},
	{"qsc", PAProfile{
		Name:            "QSC",
		Category:        "Powered Speaker",
		LowExtensionHz:  55,
		HighExtensionHz: 18000,
		Notes:           []string{"balanced, suited to small and mid-size rooms"},
		Known:           true,
	}},
	{"nexo", PAProfile{
		Name:            "NEXO",
		Category:        "Line Array / Point Source",
		LowExtensionHz:  50,
		HighExtensionHz: 19000,
		Notes:           []string{"flat response, high clarity"},
		Known:           true,
	}},
	{"yamaha", PAProfile{
		Name:            "Yamaha",
		Category:        "Powered Speaker / Line Array",
		LowExtensionHz:  55,
		HighExtensionHz: 20000,
		Notes:           []string{"flat and clean top end", "suited to small and mid-size rooms"},
		Known:           true,
	}},
}

// DefaultConsole is returned when no console matches.
func DefaultConsole(name string) ConsoleProfile {
	return ConsoleProfile{
		Name:        name,
		EQBands:     4,
		EQType:      "Parametric",
		GainRangeDB: [2]float64{-15, 15},
		QRange:      [2]float64{0.3, 10},
		CompModels:  []string{"Standard"},
		HPFSlopes:   standardHPFSlopes,
		Tier:        0.5,
	}
}

// DefaultPA is returned when no PA system matches.
func DefaultPA(name string) PAProfile {
	return PAProfile{
		Name:            name,
		Category:        "Unknown",
		LowExtensionHz:  50,
		HighExtensionHz: 18000,
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func lookupConsole(name string) ConsoleProfile {
	n := normalize(name)
	if n != "" {
		for _, e := range knownConsoles {
			if strings.Contains(n, e.key) {
				return e.profile
			}
		}
	}
	return DefaultConsole(name)
}

func lookupPA(name string) PAProfile {
	n := normalize(name)
	if n != "" {
		for _, e := range knownPAs {
			if strings.Contains(n, e.key) {
				return e.profile
			}
		}
	}
	return DefaultPA(name)
}
