// Package audio decodes input recordings into the fixed-rate waveform the
// analysis pipeline operates on. Decoding shells out to ffmpeg so any
// container/codec the venue's recorder produced (wav, mp3, flac, m4a) is
// accepted.
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
)

const (
	// All analysis runs at this rate.
	SampleRate = 22050

	// Recordings are capped to keep STFT passes bounded.
	MaxDuration = 300.0
)

// Waveform is a decoded, duration-capped stereo recording. Mono sources are
// duplicated to both channels.
type Waveform struct {
	Left  []float64
	Right []float64
	Mono  []float64

	SampleRate int
	Duration   float64
}

// Decoder loads a recording from a path.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Waveform, error)
}

// FFmpegDecoder decodes via the ffmpeg binary.
type FFmpegDecoder struct{}

// Decode reads path into a stereo float waveform at SampleRate, truncated
// to MaxDuration seconds. Any decode failure is fatal to the caller's run.
func (FFmpegDecoder) Decode(ctx context.Context, path string) (*Waveform, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	args := []string{
		"-hide_banner", "-v", "error",
		"-i", path,
		"-t", fmt.Sprintf("%.0f", MaxDuration),
		"-ac", "2",
		"-ar", fmt.Sprintf("%d", SampleRate),
		"-f", "f32le",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode of %s: %w (%s)", path, err, bytes.TrimSpace(errBuf.Bytes()))
	}
	return FromInterleaved(out.Bytes())
}

// FromInterleaved builds a Waveform from interleaved stereo f32le PCM.
func FromInterleaved(raw []byte) (*Waveform, error) {
	if len(raw) == 0 || len(raw)%8 != 0 {
		return nil, fmt.Errorf("unexpected PCM byte length %d", len(raw))
	}
	frames := len(raw) / 8
	w := &Waveform{
		Left:       make([]float64, frames),
		Right:      make([]float64, frames),
		Mono:       make([]float64, frames),
		SampleRate: SampleRate,
		Duration:   float64(frames) / float64(SampleRate),
	}
	for i := 0; i < frames; i++ {
		l := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8:]))
		r := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*8+4:]))
		w.Left[i] = float64(l)
		w.Right[i] = float64(r)
		w.Mono[i] = (float64(l) + float64(r)) / 2
	}
	return w, nil
}

// FromChannels builds a Waveform from already-decoded channel data, used by
// tests and by callers that synthesize signals. A nil right channel
// duplicates the left.
func FromChannels(left, right []float64) *Waveform {
	if right == nil {
		right = left
	}
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	w := &Waveform{
		Left:       left[:n],
		Right:      right[:n],
		Mono:       make([]float64, n),
		SampleRate: SampleRate,
		Duration:   float64(n) / float64(SampleRate),
	}
	for i := 0; i < n; i++ {
		w.Mono[i] = (left[i] + right[i]) / 2
	}
	return w
}
