package gosfzengine

import "fmt"

// Trigger selects the rule deciding whether a region reacts to a MIDI event.
type Trigger int

const (
	// TriggerAttack fires on a matching note-on (the default).
	TriggerAttack Trigger = iota
	// TriggerRelease fires when a stored note is released, honoring the
	// sustain pedal.
	TriggerRelease
	// TriggerReleaseKey fires on the key release regardless of the pedal.
	TriggerReleaseKey
	// TriggerFirst fires only when no other key is held.
	TriggerFirst
	// TriggerLegato fires only when another key is already held.
	TriggerLegato
)

// ParseTrigger maps the trigger opcode value to a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	switch s {
	case "attack":
		return TriggerAttack, nil
	case "release":
		return TriggerRelease, nil
	case "release_key":
		return TriggerReleaseKey, nil
	case "first":
		return TriggerFirst, nil
	case "legato":
		return TriggerLegato, nil
	}
	return TriggerAttack, fmt.Errorf("unknown trigger value: %s", s)
}

func (t Trigger) String() string {
	switch t {
	case TriggerRelease:
		return "release"
	case TriggerReleaseKey:
		return "release_key"
	case TriggerFirst:
		return "first"
	case TriggerLegato:
		return "legato"
	}
	return "attack"
}

// RegionData holds the configuration of one region. It is produced by the
// parser through the validating setters below and never mutated once the
// engine starts.
type RegionData struct {
	KeyRange    NoteRange
	VelRange    VelRange
	RandomRange RandomRange

	Ampeg EnvelopeParams

	pitchKeycenter uint8
	pitchKeytrack  float64
	ampVeltrack    float64
	volume         float64
	rtDecay        float64
	tune           float64

	trigger Trigger

	group uint32
	offBy uint32

	onCcs map[uint8]*ControlValRange

	sample string
}

// NewRegionData returns region data with the SFZ defaults: full key and
// velocity ranges, keycenter C3 (60), keytrack 1.0, veltrack 1.0, trigger
// attack, envelope with zero-length stages and full sustain, everything
// else zero.
func NewRegionData() RegionData {
	return RegionData{
		KeyRange:       DefaultNoteRange(),
		VelRange:       DefaultVelRange(),
		Ampeg:          DefaultEnvelopeParams(),
		pitchKeycenter: 60,
		pitchKeytrack:  1.0,
		ampVeltrack:    1.0,
	}
}

// SetAmpVeltrack sets amp_veltrack from percent (-100..100).
func (rd *RegionData) SetAmpVeltrack(v float64) error {
	if v < -100.0 || v > 100.0 {
		return fmt.Errorf("amp_veltrack out of range: -100 <= %g <= 100", v)
	}
	rd.ampVeltrack = v / 100.0
	return nil
}

// SetPitchKeycenter sets pitch_keycenter (0..127).
func (rd *RegionData) SetPitchKeycenter(v int) error {
	if v < 0 || v > 127 {
		return outOfRangeError("pitch_keycenter", 0, 127, v)
	}
	rd.pitchKeycenter = uint8(v)
	return nil
}

// SetPitchKeytrack sets pitch_keytrack from cents (-1200..1200).
func (rd *RegionData) SetPitchKeytrack(v float64) error {
	if v < -1200.0 || v > 1200.0 {
		return fmt.Errorf("pitch_keytrack out of range: -1200 <= %g <= 1200", v)
	}
	rd.pitchKeytrack = v / 100.0
	return nil
}

// SetRtDecay sets rt_decay in dB per second (0..200).
func (rd *RegionData) SetRtDecay(v float64) error {
	if v < 0.0 || v > 200.0 {
		return fmt.Errorf("rt_decay out of range: 0 <= %g <= 200", v)
	}
	rd.rtDecay = v
	return nil
}

// SetTune sets tune from cents (-100..100).
func (rd *RegionData) SetTune(v int) error {
	if v < -100 || v > 100 {
		return outOfRangeError("tune", -100, 100, v)
	}
	rd.tune = float64(v) / 100.0
	return nil
}

// SetVolume sets volume in dB (-144.6..6).
func (rd *RegionData) SetVolume(v float64) error {
	if v < -144.6 || v > 6.0 {
		return fmt.Errorf("volume out of range: -144.6 <= %g <= 6", v)
	}
	rd.volume = v
	return nil
}

// SetTrigger sets the trigger mode.
func (rd *RegionData) SetTrigger(t Trigger) {
	rd.trigger = t
}

// SetGroup sets the choke group id; 0 means no group.
func (rd *RegionData) SetGroup(v uint32) {
	rd.group = v
}

// SetOffBy sets the group id that silences this region; 0 means none.
func (rd *RegionData) SetOffBy(v uint32) {
	rd.offBy = v
}

// SetSample records the sample reference (path, resolved by the loader).
func (rd *RegionData) SetSample(s string) {
	rd.sample = s
}

// Sample returns the sample reference.
func (rd *RegionData) Sample() string {
	return rd.sample
}

// PushOnLoCc sets the lower bound of the on_loccN range for controller cc.
func (rd *RegionData) PushOnLoCc(cc uint8, v int) error {
	return rd.onCcRange(cc).SetLo(v)
}

// PushOnHiCc sets the upper bound of the on_hiccN range for controller cc.
func (rd *RegionData) PushOnHiCc(cc uint8, v int) error {
	return rd.onCcRange(cc).SetHi(v)
}

func (rd *RegionData) onCcRange(cc uint8) *ControlValRange {
	if rd.onCcs == nil {
		rd.onCcs = make(map[uint8]*ControlValRange)
	}
	r, ok := rd.onCcs[cc]
	if !ok {
		r = &ControlValRange{}
		rd.onCcs[cc] = r
	}
	return r
}
