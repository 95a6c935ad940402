package gosfzengine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
)

var sampleDebug = debuggo.Debug("sfzengine:sample")

// Sample represents a loaded audio sample, normalized to interleaved stereo
// float32 (mono sources are duplicated onto both channels). SampleRate is
// the source rate; the engine compensates for host-rate mismatch.
type Sample struct {
	FilePath   string
	Data       []float32 // interleaved stereo
	SampleRate int
	Frames     int // frames per channel
}

// SampleCache manages loaded samples to avoid duplicate loading
type SampleCache struct {
	samples map[string]*Sample // File path -> Sample
}

// NewSampleCache creates a new sample cache
func NewSampleCache() *SampleCache {
	return &SampleCache{
		samples: make(map[string]*Sample),
	}
}

// LoadSample loads a WAV or FLAC file and returns a Sample, using cache if available
func (sc *SampleCache) LoadSample(filePath string) (*Sample, error) {
	// Check cache first
	if sample, exists := sc.samples[filePath]; exists {
		sampleDebug("Sample already cached: %s", filePath)
		return sample, nil
	}

	sampleDebug("Loading new sample: %s", filePath)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("sample file not found: %s", filePath)
	}

	ext := strings.ToLower(filepath.Ext(filePath))

	var sample *Sample
	var err error

	switch ext {
	case ".wav":
		sample, err = sc.loadWAV(filePath)
	case ".flac":
		sample, err = sc.loadFLAC(filePath)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .wav, .flac)", ext)
	}

	if err != nil {
		return nil, err
	}

	sc.samples[filePath] = sample

	sampleDebug("Loaded sample: %s (rate: %d Hz, frames: %d)",
		filePath, sample.SampleRate, sample.Frames)

	return sample, nil
}

// interleaveStereo converts per-frame channel data into the interleaved
// stereo layout the engine plays. Mono input lands on both channels;
// sources with more than two channels keep their first two.
func interleaveStereo(data []float32, channels int) []float32 {
	if channels == 2 {
		return data
	}
	frames := len(data) / channels
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		left := data[i*channels]
		right := left
		if channels > 1 {
			right = data[i*channels+1]
		}
		out[i*2] = left
		out[i*2+1] = right
	}
	return out
}

// normalizeInt converts an integer PCM value to float32 for the given bit
// depth. Unknown depths fall back to 16-bit scaling.
func normalizeInt(sample int, bitDepth int) float32 {
	switch bitDepth {
	case 16:
		return float32(sample) / 32768.0
	case 24:
		return float32(sample) / 8388608.0
	case 32:
		return float32(sample) / 2147483648.0
	default:
		return float32(sample) / 32768.0
	}
}

// loadWAV loads a WAV file
func (sc *SampleCache) loadWAV(filePath string) (*Sample, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file %s: %w", filePath, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", filePath)
	}

	audioData, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data from %s: %w", filePath, err)
	}

	channels := int(audioData.Format.NumChannels)
	if channels < 1 {
		return nil, fmt.Errorf("WAV file %s has no channels", filePath)
	}

	samples := make([]float32, len(audioData.Data))
	for i, sample := range audioData.Data {
		samples[i] = normalizeInt(sample, int(decoder.BitDepth))
	}

	data := interleaveStereo(samples, channels)

	return &Sample{
		FilePath:   filePath,
		Data:       data,
		SampleRate: int(audioData.Format.SampleRate),
		Frames:     len(data) / 2,
	}, nil
}

// loadFLAC loads a FLAC file
func (sc *SampleCache) loadFLAC(filePath string) (*Sample, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file %s: %w", filePath, err)
	}
	defer file.Close()

	stream, err := flac.New(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create FLAC decoder for %s: %w", filePath, err)
	}
	defer stream.Close()

	info := stream.Info
	if info == nil {
		return nil, fmt.Errorf("no stream info available for FLAC file: %s", filePath)
	}

	sampleRate := int(info.SampleRate)
	channels := int(info.NChannels)
	bitsPerSample := int(info.BitsPerSample)

	// Read all audio frames
	var allSamples []float32
	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if err == io.EOF || err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("failed to read FLAC frame from %s: %w", filePath, err)
		}

		for i := 0; i < len(frame.Subframes[0].Samples); i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				allSamples = append(allSamples, normalizeInt(int(sample), bitsPerSample))
			}
		}
	}

	data := interleaveStereo(allSamples, channels)

	return &Sample{
		FilePath:   filePath,
		Data:       data,
		SampleRate: sampleRate,
		Frames:     len(data) / 2,
	}, nil
}

// LoadSampleRelative loads a sample with a path relative to the SFZ file directory
func (sc *SampleCache) LoadSampleRelative(sfzDir, relativePath string) (*Sample, error) {
	absolutePath := filepath.Join(sfzDir, relativePath)
	return sc.LoadSample(absolutePath)
}

// GetSample returns a cached sample if it exists
func (sc *SampleCache) GetSample(filePath string) (*Sample, bool) {
	sample, exists := sc.samples[filePath]
	return sample, exists
}

// Clear removes all samples from the cache
func (sc *SampleCache) Clear() {
	sc.samples = make(map[string]*Sample)
	sampleDebug("Sample cache cleared")
}

// Size returns the number of cached samples
func (sc *SampleCache) Size() int {
	return len(sc.samples)
}
