package gosfzengine

import (
	"path/filepath"
	"testing"
)

func TestLoadWavMonoDuplicatesChannels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mono.wav")
	createTestWavFile(t, path, []float64{0.5, -0.5, 0.25}, 1, 44100)

	cache := NewSampleCache()
	sample, err := cache.LoadSample(path)
	if err != nil {
		t.Fatalf("Failed to load WAV: %v", err)
	}

	if sample.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", sample.SampleRate)
	}
	if sample.Frames != 3 {
		t.Errorf("Expected 3 frames, got %d", sample.Frames)
	}
	if len(sample.Data) != 6 {
		t.Fatalf("Expected 6 interleaved values, got %d", len(sample.Data))
	}

	// Mono is duplicated onto both channels.
	for i := 0; i < sample.Frames; i++ {
		if sample.Data[i*2] != sample.Data[i*2+1] {
			t.Errorf("Expected frame %d duplicated, got %f / %f", i, sample.Data[i*2], sample.Data[i*2+1])
		}
	}
	if !approxEqual(float64(sample.Data[0]), 0.5, 0.001) {
		t.Errorf("Expected first frame 0.5, got %f", sample.Data[0])
	}
	if !approxEqual(float64(sample.Data[2]), -0.5, 0.001) {
		t.Errorf("Expected second frame -0.5, got %f", sample.Data[2])
	}
}

func TestLoadWavStereo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stereo.wav")
	// Interleaved L/R frames.
	createTestWavFile(t, path, []float64{1.0, 0.5, 0.5, 1.0}, 2, 22050)

	cache := NewSampleCache()
	sample, err := cache.LoadSample(path)
	if err != nil {
		t.Fatalf("Failed to load WAV: %v", err)
	}

	if sample.SampleRate != 22050 {
		t.Errorf("Expected sample rate 22050, got %d", sample.SampleRate)
	}
	if sample.Frames != 2 {
		t.Errorf("Expected 2 frames, got %d", sample.Frames)
	}
	if !approxEqual(float64(sample.Data[0]), 1.0, 0.001) || !approxEqual(float64(sample.Data[1]), 0.5, 0.001) {
		t.Errorf("Expected first frame (1.0, 0.5), got (%f, %f)", sample.Data[0], sample.Data[1])
	}
}

func TestSampleCacheReuse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cached.wav")
	createTestWavFile(t, path, []float64{0.1, 0.2}, 1, 44100)

	cache := NewSampleCache()
	first, err := cache.LoadSample(path)
	if err != nil {
		t.Fatalf("Failed to load WAV: %v", err)
	}
	second, err := cache.LoadSample(path)
	if err != nil {
		t.Fatalf("Failed to load cached WAV: %v", err)
	}

	if first != second {
		t.Error("Expected the cached sample instance on the second load")
	}
	if cache.Size() != 1 {
		t.Errorf("Expected cache size 1, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", cache.Size())
	}
}

func TestLoadSampleMissingFile(t *testing.T) {
	cache := NewSampleCache()
	if _, err := cache.LoadSample("does/not/exist.wav"); err == nil {
		t.Error("Expected error for missing sample file")
	}
}

func TestLoadSampleUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := createTestSfzFile(t, dir, "<region>")

	cache := NewSampleCache()
	if _, err := cache.LoadSample(path); err == nil {
		t.Error("Expected error for unsupported file extension")
	}
}

func TestLoadSampleRelative(t *testing.T) {
	dir := t.TempDir()
	createTestWavFile(t, filepath.Join(dir, "rel.wav"), []float64{0.3}, 1, 44100)

	cache := NewSampleCache()
	sample, err := cache.LoadSampleRelative(dir, "rel.wav")
	if err != nil {
		t.Fatalf("Failed to load relative sample: %v", err)
	}
	if sample.Frames != 1 {
		t.Errorf("Expected 1 frame, got %d", sample.Frames)
	}
}
