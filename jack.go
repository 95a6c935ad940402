//go:build jack
// +build jack

package gosfzengine

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"
	"github.com/xthexder/go-jack"
	"gitlab.com/gomidi/midi/v2"
)

var jackDebug = debuggo.Debug("sfzengine:jack")

// JackClient connects an SfzPlayer to a JACK server: one MIDI input port,
// stereo audio output ports, and an engine built at the server's sample
// rate driving the process callback.
type JackClient struct {
	client       *jack.Client
	player       *SfzPlayer
	engine       *Engine
	leftOutPort  *jack.Port
	rightOutPort *jack.Port
	midiInPort   *jack.Port
	sampleRate   uint32
	bufferSize   uint32

	// Scratch blocks the engine mixes into before the per-sample copy to
	// the port buffers. Sized to the server's buffer size up front.
	left  []float32
	right []float32
}

// NewJackClient creates a new JACK client for the SFZ player
func NewJackClient(player *SfzPlayer, clientName string) (*JackClient, error) {
	jackDebug("Creating JACK client: %s", clientName)

	client, err := jack.ClientOpen(clientName, jack.NoStartServer)
	if err != nil {
		return nil, fmt.Errorf("failed to open JACK client: %w", err)
	}

	jackClient := &JackClient{
		client:     client,
		player:     player,
		sampleRate: uint32(client.GetSampleRate()),
		bufferSize: uint32(client.GetBufferSize()),
	}

	engine, err := player.BuildEngine(float64(jackClient.sampleRate), int(jackClient.bufferSize))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to build engine for JACK client: %w", err)
	}
	jackClient.engine = engine
	jackClient.left = make([]float32, jackClient.bufferSize)
	jackClient.right = make([]float32, jackClient.bufferSize)

	leftOutPort, err := client.PortRegister("out_left", jack.DEFAULT_AUDIO_TYPE, jack.PortIsOutput, 0)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to register left output port: %w", err)
	}
	jackClient.leftOutPort = leftOutPort

	rightOutPort, err := client.PortRegister("out_right", jack.DEFAULT_AUDIO_TYPE, jack.PortIsOutput, 0)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to register right output port: %w", err)
	}
	jackClient.rightOutPort = rightOutPort

	midiInPort, err := client.PortRegister("midi_in", jack.DEFAULT_MIDI_TYPE, jack.PortIsInput, 0)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to register MIDI input port: %w", err)
	}
	jackClient.midiInPort = midiInPort

	client.SetProcessCallback(jackClient.processCallback)

	jackDebug("JACK client created successfully (sample rate: %d Hz, buffer size: %d)",
		jackClient.sampleRate, jackClient.bufferSize)

	return jackClient, nil
}

// Start activates the JACK client and begins audio processing
func (jc *JackClient) Start() error {
	jackDebug("Starting JACK client")

	if err := jc.client.Activate(); err != nil {
		return fmt.Errorf("failed to activate JACK client: %w", err)
	}

	jackDebug("JACK client activated successfully")
	return nil
}

// Stop deactivates the JACK client
func (jc *JackClient) Stop() error {
	jackDebug("Stopping JACK client")

	if err := jc.client.Deactivate(); err != nil {
		return fmt.Errorf("failed to deactivate JACK client: %w", err)
	}

	jackDebug("JACK client deactivated")
	return nil
}

// Close closes the JACK client connection
func (jc *JackClient) Close() error {
	jackDebug("Closing JACK client")

	if err := jc.client.Close(); err != nil {
		return fmt.Errorf("failed to close JACK client: %w", err)
	}

	jackDebug("JACK client closed")
	return nil
}

// Engine exposes the engine driven by this client.
func (jc *JackClient) Engine() *Engine {
	return jc.engine
}

// processCallback is called by JACK for each audio buffer. The engine mixes
// additively, so the scratch blocks are zeroed here before rendering.
func (jc *JackClient) processCallback(nframes uint32) int {
	midiIn := jc.midiInPort.GetBuffer(nframes)
	jc.processMidiEvents(midiIn)

	n := int(nframes)
	if n > len(jc.left) {
		n = len(jc.left)
	}
	left := jc.left[:n]
	right := jc.right[:n]
	for i := 0; i < n; i++ {
		left[i] = 0.0
		right[i] = 0.0
	}

	jc.engine.Process(left, right)

	leftOut := jack.GetAudioSamples(jc.leftOutPort.GetBuffer(nframes), nframes)
	rightOut := jack.GetAudioSamples(jc.rightOutPort.GetBuffer(nframes), nframes)
	for i := range leftOut {
		if i < n {
			leftOut[i] = jack.AudioSample(left[i])
			rightOut[i] = jack.AudioSample(right[i])
		} else {
			leftOut[i] = 0.0
			rightOut[i] = 0.0
		}
	}

	return 0
}

// processMidiEvents forwards the block's MIDI events to the engine in
// arrival order. Events apply to the whole block.
func (jc *JackClient) processMidiEvents(midiBuffer *jack.PortBuffer) {
	eventCount := jack.MidiGetEventCount(midiBuffer)

	for i := uint32(0); i < eventCount; i++ {
		event, err := jack.MidiEventGet(midiBuffer, i)
		if err != nil {
			continue
		}
		if len(event.Buffer) < 1 {
			continue
		}
		jc.engine.MidiEvent(midi.Message(event.Buffer))
	}
}
