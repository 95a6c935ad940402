package gosfzengine

import "math"

// noteToFreq converts a MIDI note number to Hz (A4 = note 69 = 440 Hz).
func noteToFreq(note uint8) float64 {
	return 440.0 * math.Pow(2.0, (float64(note)-69.0)/12.0)
}

// dbToGain converts decibels to a linear gain factor.
func dbToGain(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

// Region is the runtime voice of one configured region: it translates MIDI
// into SamplePlayer calls under the rules of the region's trigger mode.
type Region struct {
	data   RegionData
	player *SamplePlayer

	samplerate float64

	lastNote    uint8
	lastVel     uint8
	hasLastNote bool

	// Notes whose note-off is deferred while the sustain pedal is down.
	notesForReleaseTrigger [128]bool
	// Held notes outside the key range, for first/legato triggers.
	otherNotesOn [128]bool

	timeSinceNoteOn    float64
	sustainPedalPushed bool

	// Suppresses self-choke within the MIDI event that fired this region.
	groupImmune bool
}

// NewRegion builds the runtime state for one region over its decoded sample.
func NewRegion(data RegionData, sampleData []float32, sourceRate, samplerate float64, maxBlockLength int) *Region {
	envelope := NewAdsrEnvelope(data.Ampeg, samplerate)
	keycenterFreq := noteToFreq(data.pitchKeycenter)
	return &Region{
		data:       data,
		player:     NewSamplePlayer(sampleData, sourceRate, samplerate, keycenterFreq, envelope, maxBlockLength),
		samplerate: samplerate,
	}
}

// noteOn fires a voice for (note, velocity), subject to the random gate.
// Reports whether the region fired.
func (r *Region) noteOn(note, velocity uint8, draw float64) bool {
	if !r.data.RandomRange.Covering(draw) {
		return false
	}

	vel := velocity
	if r.data.ampVeltrack < 0.0 {
		vel = 127 - velocity
	}
	velocityDb := -160.0
	if vel != 0 {
		v := float64(vel)
		velocityDb = -20.0 * math.Log10((127.0*127.0)/(v*v))
	}

	db := r.data.volume + velocityDb*math.Abs(r.data.ampVeltrack)
	switch r.data.trigger {
	case TriggerRelease, TriggerReleaseKey:
		db -= r.data.rtDecay * r.timeSinceNoteOn
	}
	gain := dbToGain(db)

	nativeFreq := noteToFreq(r.data.pitchKeycenter)
	keyShift := math.Pow(noteToFreq(note)/nativeFreq, r.data.pitchKeytrack)
	tuneShift := math.Pow(2.0, r.data.tune/12.0)
	targetFreq := nativeFreq * keyShift * tuneShift

	r.player.NoteOn(note, targetFreq, gain)
	r.timeSinceNoteOn = 0.0
	r.notesForReleaseTrigger[note] = false
	r.groupImmune = true
	return true
}

// handleNoteOn applies the note-on rules of the region's trigger mode.
// Reports whether the region fired.
func (r *Region) handleNoteOn(note, velocity uint8, draw float64) bool {
	if !r.data.KeyRange.Covering(note) {
		r.otherNotesOn[note] = true
		return false
	}
	if !r.data.VelRange.Covering(velocity) {
		return false
	}

	switch r.data.trigger {
	case TriggerRelease, TriggerReleaseKey:
		r.lastNote = note
		r.lastVel = velocity
		r.hasLastNote = true
		r.timeSinceNoteOn = 0.0
		r.notesForReleaseTrigger[note] = false
		return false
	case TriggerFirst:
		if r.anyOtherNoteOn() {
			return false
		}
	case TriggerLegato:
		if !r.anyOtherNoteOn() {
			return false
		}
	}
	return r.noteOn(note, velocity, draw)
}

// handleNoteOff applies the note-off rules: release triggers fire their
// stored note, everything else releases the voice unless the sustain pedal
// defers it. Reports whether the region fired.
func (r *Region) handleNoteOff(note uint8, draw float64) bool {
	if !r.data.KeyRange.Covering(note) {
		r.otherNotesOn[note] = false
		return false
	}

	switch r.data.trigger {
	case TriggerRelease, TriggerReleaseKey:
		if r.hasLastNote {
			return r.noteOn(r.lastNote, r.lastVel, draw)
		}
		return false
	}

	if r.sustainPedalPushed {
		r.notesForReleaseTrigger[note] = true
	} else {
		r.player.NoteOff(note)
	}
	return false
}

// handleControlChange handles the sustain pedal (CC 64) and CC-triggered
// firing. Reports whether the region fired.
func (r *Region) handleControlChange(controller, value uint8, draw float64) bool {
	fired := false

	if controller == 64 {
		pushed := value >= 64
		if r.sustainPedalPushed && !pushed {
			if r.data.trigger == TriggerRelease && r.hasLastNote {
				fired = r.noteOn(r.lastNote, r.lastVel, draw)
			} else {
				for note := 0; note < 128; note++ {
					if r.notesForReleaseTrigger[note] {
						r.player.NoteOff(uint8(note))
						r.notesForReleaseTrigger[note] = false
					}
				}
			}
		}
		r.sustainPedalPushed = pushed
	}

	if cvr, ok := r.data.onCcs[controller]; ok && cvr.Covering(value) {
		if r.noteOn(r.data.pitchKeycenter, 127, draw) {
			fired = true
		}
	}
	return fired
}

func (r *Region) anyOtherNoteOn() bool {
	for _, on := range r.otherNotesOn {
		if on {
			return true
		}
	}
	return false
}

// groupActivated silences the region's voices when group g chokes it,
// unless this region itself fired during the current event.
func (r *Region) groupActivated(g uint32) {
	if r.groupImmune {
		return
	}
	if r.data.group == g || r.data.offBy == g {
		r.player.AllNotesOff()
	}
}

// process advances the note-on clock and mixes the region's voices into
// left and right. Additive, never clears the buffers.
func (r *Region) process(left, right []float32) {
	r.timeSinceNoteOn += float64(len(left)) / r.samplerate
	r.player.Process(left, right)
}
