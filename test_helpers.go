package gosfzengine

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// createTestSfzFile writes an SFZ file with the given content into a temp
// directory and returns its path.
func createTestSfzFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "test.sfz")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test SFZ file: %v", err)
	}
	return path
}

// createTestWavFile writes a 16-bit PCM WAV file from float frames. Mono
// input writes one channel, stereo input expects interleaved frames.
func createTestWavFile(t *testing.T, path string, frames []float64, channels, sampleRate int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test WAV file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	data := make([]int, len(frames))
	for i, s := range frames {
		data[i] = int(s * 32767)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Failed to write test WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Failed to close test WAV file: %v", err)
	}
}

// constantSample returns n frames of a constant stereo value.
func constantSample(n int, value float32) []float32 {
	data := make([]float32, n*2)
	for i := range data {
		data[i] = value
	}
	return data
}

// renderBlock zeroes two fresh blocks and processes the engine into them.
func renderBlock(e *Engine, n int) ([]float32, []float32) {
	left := make([]float32, n)
	right := make([]float32, n)
	e.Process(left, right)
	return left, right
}

// renderBlocksLeft renders a sequence of block sizes and concatenates the left
// channel output.
func renderBlocksLeft(e *Engine, sizes []int) []float32 {
	var out []float32
	for _, n := range sizes {
		left, _ := renderBlock(e, n)
		out = append(out, left...)
	}
	return out
}

// roundTo rounds to the given number of decimal places, matching the
// precision the playback expectations are written at.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10.0, float64(places))
	return math.Round(v*scale) / scale
}

// assertSamples compares a rendered block against expectations after
// rounding to places decimals.
func assertSamples(t *testing.T, name string, got []float32, expected []float64, places int) {
	t.Helper()

	if len(got) != len(expected) {
		t.Fatalf("%s: expected %d samples, got %d", name, len(expected), len(got))
	}
	for i := range expected {
		if roundTo(float64(got[i]), places) != expected[i] {
			t.Errorf("%s: expected sample %d to round to %g, got %g", name, i, expected[i], got[i])
		}
	}
}

// approxEqual reports float equality within tolerance.
func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
