package main

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// timedEvent is one playable MIDI message with its position in the piece.
type timedEvent struct {
	frame int // absolute frame at the host sample rate
	msg   midi.Message
}

// loadSmfEvents flattens a Standard MIDI File into a frame-stamped event
// list at the given sample rate. Only note and controller messages are
// kept; the first tempo of the file applies throughout (the engine applies
// events block-aligned anyway).
func loadSmfEvents(path string, samplerate float64) ([]timedEvent, error) {
	rd, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file %s: %w", path, err)
	}

	mt, ok := rd.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported MIDI time format: %v", rd.TimeFormat)
	}

	bpm := 120.0
	if tempos := rd.TempoChanges(); len(tempos) > 0 {
		bpm = tempos[0].BPM
	}

	var events []timedEvent
	for _, track := range rd.Tracks {
		var currentTick uint32
		for _, ev := range track {
			currentTick += ev.Delta

			var channel, key, velocity, controller, value uint8
			var msg midi.Message
			switch {
			case ev.Message.GetNoteOn(&channel, &key, &velocity):
				msg = midi.NoteOn(channel, key, velocity)
			case ev.Message.GetNoteOff(&channel, &key, &velocity):
				msg = midi.NoteOff(channel, key)
			case ev.Message.GetControlChange(&channel, &controller, &value):
				msg = midi.ControlChange(channel, controller, value)
			default:
				continue
			}

			seconds := mt.Duration(bpm, currentTick).Seconds()
			events = append(events, timedEvent{
				frame: int(seconds * samplerate),
				msg:   msg,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].frame < events[j].frame
	})
	return events, nil
}
