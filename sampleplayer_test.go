package gosfzengine

import "testing"

// testPlayer builds a SamplePlayer over interleaved stereo data at equal
// host and source rates, native pitch 100 Hz, default instant envelope.
func testPlayer(data []float32, maxBlockLength int) *SamplePlayer {
	envelope := NewAdsrEnvelope(DefaultEnvelopeParams(), 1.0)
	return NewSamplePlayer(data, 1.0, 1.0, 100.0, envelope, maxBlockLength)
}

func TestSamplePlayerStereoPlayback(t *testing.T) {
	data := []float32{1.0, 0.5, 0.5, 1.0, 1.0, 0.5}
	sp := testPlayer(data, 8)

	sp.NoteOn(60, 100.0, 1.0)
	if !sp.IsPlayingNote(60) {
		t.Fatal("Expected note 60 to be playing")
	}

	left := make([]float32, 4)
	right := make([]float32, 4)
	sp.Process(left, right)

	expectedLeft := []float64{1.0, 0.5, 1.0, 0.0}
	expectedRight := []float64{0.5, 1.0, 0.5, 0.0}
	for i := range expectedLeft {
		if !approxEqual(float64(left[i]), expectedLeft[i], 1e-6) {
			t.Errorf("Expected left[%d]=%g, got %f", i, expectedLeft[i], left[i])
		}
		if !approxEqual(float64(right[i]), expectedRight[i], 1e-6) {
			t.Errorf("Expected right[%d]=%g, got %f", i, expectedRight[i], right[i])
		}
	}

	if sp.IsPlaying() {
		t.Error("Expected voice to end after the buffer was exhausted")
	}
}

func TestSamplePlayerAdditiveMix(t *testing.T) {
	data := []float32{1.0, 0.5, 0.5, 1.0, 1.0, 0.5}
	sp := testPlayer(data, 8)
	sp.NoteOn(60, 100.0, 1.0)

	left := []float32{0.25, -0.25}
	right := []float32{-0.2, 0.1}
	sp.Process(left, right)

	if !approxEqual(float64(left[0]), 1.25, 1e-6) || !approxEqual(float64(left[1]), 0.25, 1e-6) {
		t.Errorf("Expected additive left [1.25 0.25], got %v", left)
	}
	if !approxEqual(float64(right[0]), 0.3, 1e-6) || !approxEqual(float64(right[1]), 1.1, 1e-6) {
		t.Errorf("Expected additive right [0.3 1.1], got %v", right)
	}
}

func TestSamplePlayerGain(t *testing.T) {
	data := constantSample(4, 1.0)
	sp := testPlayer(data, 8)
	sp.NoteOn(60, 100.0, 0.25)

	left, right := make([]float32, 2), make([]float32, 2)
	sp.Process(left, right)

	if !approxEqual(float64(left[0]), 0.25, 1e-6) || !approxEqual(float64(right[0]), 0.25, 1e-6) {
		t.Errorf("Expected gain 0.25 applied to both channels, got %f / %f", left[0], right[0])
	}
}

func TestSamplePlayerPitchStride(t *testing.T) {
	// Frames 0..7 as a ramp on the left channel; double frequency reads
	// every other frame.
	data := make([]float32, 16)
	for i := 0; i < 8; i++ {
		data[i*2] = float32(i)
	}
	sp := testPlayer(data, 8)
	sp.NoteOn(72, 200.0, 1.0)

	left, right := make([]float32, 4), make([]float32, 4)
	sp.Process(left, right)

	expected := []float64{0, 2, 4, 6}
	for i, want := range expected {
		if !approxEqual(float64(left[i]), want, 1e-6) {
			t.Errorf("Expected left[%d]=%g at double stride, got %f", i, want, left[i])
		}
	}
}

func TestSamplePlayerSourceRateCompensation(t *testing.T) {
	// Source recorded at half the host rate plays at half stride.
	data := make([]float32, 16)
	for i := 0; i < 8; i++ {
		data[i*2] = float32(i)
	}
	envelope := NewAdsrEnvelope(DefaultEnvelopeParams(), 2.0)
	sp := NewSamplePlayer(data, 1.0, 2.0, 100.0, envelope, 8)
	sp.NoteOn(60, 100.0, 1.0)

	left, right := make([]float32, 4), make([]float32, 4)
	sp.Process(left, right)

	expected := []float64{0, 0, 1, 1}
	for i, want := range expected {
		if !approxEqual(float64(left[i]), want, 1e-6) {
			t.Errorf("Expected left[%d]=%g at half stride, got %f", i, want, left[i])
		}
	}
}

func TestSamplePlayerNoteOffReleasesOldest(t *testing.T) {
	data := constantSample(1000, 1.0)
	sp := testPlayer(data, 8)

	sp.NoteOn(60, 100.0, 1.0)
	sp.NoteOn(60, 100.0, 1.0)

	// The first voice moved to its release when the note restarted.
	if !sp.IsPlayingNote(60) {
		t.Error("Expected a playing voice for note 60")
	}
	if !sp.IsReleasingNote(60) {
		t.Error("Expected the replaced voice to be releasing")
	}

	sp.NoteOff(60)
	if sp.IsPlayingNote(60) {
		t.Error("Expected no playing voice after note off")
	}
}

func TestSamplePlayerAllNotesOff(t *testing.T) {
	data := constantSample(1000, 1.0)
	sp := testPlayer(data, 8)

	sp.NoteOn(60, 100.0, 1.0)
	sp.NoteOn(64, 100.0, 1.0)
	sp.NoteOn(67, 100.0, 1.0)

	sp.AllNotesOff()

	for _, note := range []uint8{60, 64, 67} {
		if sp.IsPlayingNote(note) {
			t.Errorf("Expected note %d to be released", note)
		}
	}
}

func TestSamplePlayerVoicePoolStealing(t *testing.T) {
	data := constantSample(1000, 1.0)
	sp := testPlayer(data, 8)

	// Exhaust the pool with held notes, then keep firing: allocation must
	// reuse pool entries instead of growing.
	for i := 0; i < maxVoicesPerRegion+8; i++ {
		sp.NoteOn(uint8(i%120), 100.0, 1.0)
	}

	active := 0
	for i := range sp.voices {
		if sp.voices[i].active {
			active++
		}
	}
	if active != maxVoicesPerRegion {
		t.Errorf("Expected exactly %d active voices, got %d", maxVoicesPerRegion, active)
	}
}

func TestSamplePlayerEmptyBufferEndsImmediately(t *testing.T) {
	sp := testPlayer(nil, 8)
	sp.NoteOn(60, 100.0, 1.0)

	left, right := make([]float32, 4), make([]float32, 4)
	sp.Process(left, right)

	for i := range left {
		if left[i] != 0.0 || right[i] != 0.0 {
			t.Errorf("Expected silence from empty sample, got %f / %f at %d", left[i], right[i], i)
		}
	}
	if sp.IsPlaying() {
		t.Error("Expected voice over empty sample to end on first process")
	}
}
