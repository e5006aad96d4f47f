// Package stems turns a free-text instrumentation list into canonical
// instrument tags and derives an approximate per-instrument signal for each
// via targeted filtering. The stems are measurement proxies, not clean
// isolations.
package stems

import (
	"sort"
	"strings"
)

// Tag is a canonical instrument identifier.
type Tag string

const (
	TagVocal          Tag = "vocal"
	TagKick           Tag = "kick"
	TagSnare          Tag = "snare"
	TagHihat          Tag = "hihat"
	TagTom            Tag = "tom"
	TagBass           Tag = "bass"
	TagElectricGuitar Tag = "electric_guitar"
	TagAcousticGuitar Tag = "acoustic_guitar"
	TagKeyboard       Tag = "keyboard"
	TagSynth          Tag = "synth"
)

// aliases maps recognized spellings (Japanese, English, stage shorthand)
// to canonical tags. Matching is by substring containment.
var aliases = map[string]Tag{
	"ボーカル": TagVocal, "ヴォーカル": TagVocal, "vocals": TagVocal, "vocal": TagVocal, "vo": TagVocal,
	"キック": TagKick, "バスドラ": TagKick, "kick": TagKick, "bd": TagKick,
	"スネア": TagSnare, "snare": TagSnare, "sn": TagSnare, "sd": TagSnare,
	"ハイハット": TagHihat, "ハット": TagHihat, "hi-hat": TagHihat, "hihat": TagHihat, "hh": TagHihat,
	"タム": TagTom, "tom": TagTom,
	"ベース": TagBass, "bass": TagBass, "ba": TagBass, "ベ": TagBass,
	"エレキギター":         TagElectricGuitar,
	"electric guitar": TagElectricGuitar,
	"エレキ":             TagElectricGuitar,
	"ギター":             TagElectricGuitar,
	"guitar":          TagElectricGuitar,
	"eg":              TagElectricGuitar,
	"gt":              TagElectricGuitar,
	"アコースティックギター":      TagAcousticGuitar,
	"acoustic guitar": TagAcousticGuitar,
	"アコギ":             TagAcousticGuitar,
	"ag":              TagAcousticGuitar,
	"キーボード": TagKeyboard, "keyboard": TagKeyboard, "キーボ": TagKeyboard, "kb": TagKeyboard, "key": TagKeyboard,
	"シンセサイザー": TagSynth, "synthesizer": TagSynth, "シンセ": TagSynth, "synth": TagSynth, "syn": TagSynth,
}

// orderedAliases holds the alias table sorted longest-first (ties broken
// alphabetically) so that a short alias embedded in a longer one can never
// shadow it. The precedence is deterministic and covered by tests.
var orderedAliases = func() []string {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

var tokenSeparators = strings.NewReplacer("\n", ",", "、", ",", "，", ",", "・", ",")

// ParseLineup extracts canonical tags from free-text instrumentation.
// Duplicates are suppressed and first-seen order is preserved;
// unrecognized tokens are silently dropped.
func ParseLineup(text string) []Tag {
	var tags []Tag
	seen := make(map[Tag]bool)

	for _, token := range strings.Split(tokenSeparators.Replace(text), ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		for _, alias := range orderedAliases {
			if strings.Contains(token, alias) {
				tag := aliases[alias]
				if !seen[tag] {
					seen[tag] = true
					tags = append(tags, tag)
				}
				break
			}
		}
	}
	return tags
}
