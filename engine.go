package gosfzengine

import (
	"math/rand"

	"github.com/GeoffreyPlitt/debuggo"
	"gitlab.com/gomidi/midi/v2"
)

var engineDebug = debuggo.Debug("sfzengine:engine")

// RegionConfig feeds one region into NewEngine: validated parameters plus
// the decoded sample as interleaved stereo float32 at its source rate.
type RegionConfig struct {
	Data       RegionData
	SampleData []float32
	SampleRate float64
}

// Engine owns the regions, dispatches MIDI to them and mixes their output.
//
// Process and MidiEvent are meant for the host's audio thread: they do not
// allocate, block, lock or log. Everything is preallocated in NewEngine.
type Engine struct {
	regions        []*Region
	samplerate     float64
	maxBlockLength int

	rng         *rand.Rand
	firedGroups []uint32
}

// NewEngine builds an engine over the given region configurations at the
// host sample rate. maxBlockLength bounds the block size Process accepts.
func NewEngine(configs []RegionConfig, samplerate float64, maxBlockLength int) *Engine {
	engineDebug("Creating engine: %d regions, samplerate %.0f, max block %d", len(configs), samplerate, maxBlockLength)

	regions := make([]*Region, 0, len(configs))
	for _, cfg := range configs {
		regions = append(regions, NewRegion(cfg.Data, cfg.SampleData, cfg.SampleRate, samplerate, maxBlockLength))
	}

	return &Engine{
		regions:        regions,
		samplerate:     samplerate,
		maxBlockLength: maxBlockLength,
		rng:            rand.New(rand.NewSource(1)),
		firedGroups:    make([]uint32, 0, len(configs)),
	}
}

// SetRandomSeed reseeds the per-event random draw. The engine is
// deterministic for a given seed and MIDI history.
func (e *Engine) SetRandomSeed(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
}

// MidiEvent applies one MIDI message to every region, then broadcasts the
// choke groups fired by the event. One random draw is made per event so
// that regions with tiled random ranges stay mutually exclusive. NoteOn
// with velocity 0 counts as a note-off; unsupported message kinds and the
// channel number are ignored.
func (e *Engine) MidiEvent(msg midi.Message) {
	var channel, note, velocity, controller, value uint8

	draw := e.rng.Float64()

	for _, r := range e.regions {
		r.groupImmune = false
	}
	e.firedGroups = e.firedGroups[:0]

	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		if velocity == 0 {
			for _, r := range e.regions {
				e.collectFired(r, r.handleNoteOff(note, draw))
			}
			break
		}
		for _, r := range e.regions {
			e.collectFired(r, r.handleNoteOn(note, velocity, draw))
		}
	case msg.GetNoteOff(&channel, &note, &velocity):
		for _, r := range e.regions {
			e.collectFired(r, r.handleNoteOff(note, draw))
		}
	case msg.GetControlChange(&channel, &controller, &value):
		for _, r := range e.regions {
			e.collectFired(r, r.handleControlChange(controller, value, draw))
		}
	default:
		return
	}

	for _, g := range e.firedGroups {
		for _, r := range e.regions {
			r.groupActivated(g)
		}
	}
}

// collectFired records the region's group id when it fired on this event.
func (e *Engine) collectFired(r *Region, fired bool) {
	if !fired || r.data.group == 0 {
		return
	}
	for _, g := range e.firedGroups {
		if g == r.data.group {
			return
		}
	}
	e.firedGroups = append(e.firedGroups, r.data.group)
}

// Process mixes every region into left and right. The engine adds into the
// buffers; the host hands in zeroed (or intentionally pre-mixed) blocks.
func (e *Engine) Process(left, right []float32) {
	if len(left) == 0 || len(right) == 0 {
		return
	}
	for _, r := range e.regions {
		r.process(left, right)
	}
}

// FadeOut forces every voice of every region into its release stage.
func (e *Engine) FadeOut() {
	for _, r := range e.regions {
		r.player.AllNotesOff()
	}
}

// FadeOutFinished reports whether every voice, releasing ones included,
// has gone silent.
func (e *Engine) FadeOutFinished() bool {
	for _, r := range e.regions {
		if r.player.IsPlaying() {
			return false
		}
	}
	return true
}

// Samplerate returns the host sample rate the engine was built for.
func (e *Engine) Samplerate() float64 {
	return e.samplerate
}

// MaxBlockLength returns the largest block Process fully renders.
func (e *Engine) MaxBlockLength() int {
	return e.maxBlockLength
}
