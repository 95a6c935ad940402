package gosfzengine

import (
	"math"
	"testing"
)

func TestEnvelopeParamValidation(t *testing.T) {
	var p EnvelopeParams

	if err := p.SetAttack(0.5); err != nil {
		t.Fatalf("Expected SetAttack(0.5) to succeed, got %v", err)
	}
	if p.Attack != 0.5 {
		t.Errorf("Expected attack 0.5, got %f", p.Attack)
	}

	if err := p.SetAttack(105); err == nil {
		t.Error("Expected SetAttack(105) to fail")
	}
	if err := p.SetHold(-1); err == nil {
		t.Error("Expected SetHold(-1) to fail")
	}
	if err := p.SetDecay(101); err == nil {
		t.Error("Expected SetDecay(101) to fail")
	}
	if err := p.SetRelease(-20); err == nil {
		t.Error("Expected SetRelease(-20) to fail")
	}

	if err := p.SetSustain(75); err != nil {
		t.Fatalf("Expected SetSustain(75) to succeed, got %v", err)
	}
	if p.Sustain != 0.75 {
		t.Errorf("Expected sustain 0.75, got %f", p.Sustain)
	}
}

func TestEnvelopeDefaultsAreInstantOn(t *testing.T) {
	env := NewAdsrEnvelope(DefaultEnvelopeParams(), 44100)
	env.NoteOn()

	buf := make([]float32, 8)
	env.Process(buf)
	for i, v := range buf {
		if v != 1.0 {
			t.Errorf("Expected default envelope to output 1.0, got %f at sample %d", v, i)
		}
	}

	// Zero-length release cuts the note on the next sample.
	env.NoteOff()
	env.Process(buf)
	for i, v := range buf {
		if v != 0.0 {
			t.Errorf("Expected released default envelope to output 0.0, got %f at sample %d", v, i)
		}
	}
	if env.IsPlayingOrReleasing() {
		t.Error("Expected envelope to be idle after zero-length release")
	}
}

func TestEnvelopeFullCycle(t *testing.T) {
	// attack=2 hold=3 decay=4 sustain=60% release=5 at a 1 Hz sample rate,
	// so every stage length is its sample count.
	params := EnvelopeParams{Attack: 2, Hold: 3, Decay: 4, Sustain: 0.6, Release: 5}
	env := NewAdsrEnvelope(params, 1.0)
	env.NoteOn()

	buf := make([]float32, 12)
	env.Process(buf)

	expected := []float64{0.00, 0.50, 1.00, 1.00, 1.00, 0.65, 0.61, 0.60, 0.60, 0.60, 0.60, 0.60}
	for i, want := range expected {
		if roundTo(float64(buf[i]), 2) != want {
			t.Errorf("Expected sample %d to round to %.2f, got %f", i, want, buf[i])
		}
	}

	env.NoteOff()
	release := make([]float32, 8)
	env.Process(release)

	expectedRelease := []float64{0.0727, 0.0147, 0.0030, 0.0006, 0.0001, 0.0, 0.0, 0.0}
	for i, want := range expectedRelease {
		if roundTo(float64(release[i]), 4) != want {
			t.Errorf("Expected release sample %d to round to %.4f, got %f", i, want, release[i])
		}
	}

	if env.IsPlayingOrReleasing() {
		t.Error("Expected envelope to be idle after the release ran out")
	}
}

func TestEnvelopeStageCoefficients(t *testing.T) {
	params := EnvelopeParams{Decay: 4, Sustain: 0.6, Release: 5}
	env := NewAdsrEnvelope(params, 1.0)

	if !approxEqual(env.decayCoef, math.Exp(-2.0), 1e-12) {
		t.Errorf("Expected decay coefficient exp(-2), got %g", env.decayCoef)
	}
	if !approxEqual(env.releaseCoef, math.Exp(-1.6), 1e-12) {
		t.Errorf("Expected release coefficient exp(-1.6), got %g", env.releaseCoef)
	}
}

func TestEnvelopeSampleRateScaling(t *testing.T) {
	params := EnvelopeParams{Attack: 0.5, Hold: 0.25, Decay: 0.2, Sustain: 0.75, Release: 1.0}
	env := NewAdsrEnvelope(params, 44100)

	if env.attackSamples != 22050 {
		t.Errorf("Expected 22050 attack samples, got %d", env.attackSamples)
	}
	if env.holdSamples != 11025 {
		t.Errorf("Expected 11025 hold samples, got %d", env.holdSamples)
	}
	if env.decaySamples != 8820 {
		t.Errorf("Expected 8820 decay samples, got %d", env.decaySamples)
	}
	if env.releaseSamples != 44100 {
		t.Errorf("Expected 44100 release samples, got %d", env.releaseSamples)
	}
	if env.sustain != 0.75 {
		t.Errorf("Expected sustain level 0.75, got %f", env.sustain)
	}
}

func TestEnvelopeStateQueries(t *testing.T) {
	params := EnvelopeParams{Attack: 4, Sustain: 1.0, Release: 4}
	env := NewAdsrEnvelope(params, 1.0)

	if env.IsPlayingOrReleasing() || env.IsPlaying() {
		t.Error("Expected fresh envelope to be idle")
	}

	env.NoteOn()
	if !env.IsPlayingOrReleasing() || !env.IsPlaying() {
		t.Error("Expected envelope to be playing after note on")
	}

	env.NoteOff()
	if !env.IsPlayingOrReleasing() {
		t.Error("Expected envelope to still produce output during release")
	}
	if env.IsPlaying() {
		t.Error("Expected envelope to not count as playing during release")
	}
}

func TestEnvelopeStaysIdleAfterRelease(t *testing.T) {
	params := EnvelopeParams{Sustain: 1.0, Release: 2}
	env := NewAdsrEnvelope(params, 1.0)
	env.NoteOn()
	env.NoteOff()

	buf := make([]float32, 16)
	env.Process(buf)
	if env.IsPlayingOrReleasing() {
		t.Fatal("Expected envelope to be idle")
	}

	// A released envelope never reactivates on its own.
	env.Process(buf)
	for i, v := range buf {
		if v != 0.0 {
			t.Errorf("Expected idle envelope to output 0.0, got %f at sample %d", v, i)
		}
	}

	// Reuse goes through NoteOn.
	env.NoteOn()
	if !env.IsPlaying() {
		t.Error("Expected envelope to restart after NoteOn")
	}
}

func TestEnvelopeOutputBounds(t *testing.T) {
	params := EnvelopeParams{Attack: 0.001, Hold: 0.001, Decay: 0.001, Sustain: 0.5, Release: 0.001}
	env := NewAdsrEnvelope(params, 44100)
	env.NoteOn()

	buf := make([]float32, 200)
	env.Process(buf)
	for i, v := range buf {
		if v < 0.0 || v > 1.0 {
			t.Errorf("Envelope level should be between 0 and 1, got %f at sample %d", v, i)
		}
	}

	env.NoteOff()
	env.Process(buf)
	for i, v := range buf {
		if v < 0.0 || v > 1.0 {
			t.Errorf("Envelope level should be between 0 and 1 during release, got %f at sample %d", v, i)
		}
	}
}
