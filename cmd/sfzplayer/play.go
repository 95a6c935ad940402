package main

import (
	"fmt"

	"github.com/ebitengine/oto/v3"
	"github.com/spf13/cobra"

	"gosfzengine"
)

var (
	playRate  int
	playBlock int
	playTail  float64
)

var playCmd = &cobra.Command{
	Use:   "play <instrument.sfz> <song.mid>",
	Short: "Play a MIDI file through an SFZ instrument on the system output",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playRate, "rate", 44100, "Playback sample rate in Hz")
	playCmd.Flags().IntVar(&playBlock, "block", 512, "Render block size in frames")
	playCmd.Flags().Float64Var(&playTail, "tail", 10.0, "Maximum release tail to play, in seconds")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	sfzPath, midPath := args[0], args[1]

	player, err := gosfzengine.NewSfzPlayer(sfzPath, "")
	if err != nil {
		return err
	}

	engine, err := player.BuildEngine(float64(playRate), playBlock)
	if err != nil {
		return err
	}

	events, err := loadSmfEvents(midPath, float64(playRate))
	if err != nil {
		return err
	}

	op := &oto.NewContextOptions{
		SampleRate:   playRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	<-readyChan

	reader := &engineReader{
		engine:     engine,
		events:     events,
		block:      playBlock,
		left:       make([]float32, playBlock),
		right:      make([]float32, playBlock),
		tailFrames: int(playTail * float64(playRate)),
		fadeStart:  -1,
		done:       make(chan struct{}),
	}

	otoPlayer := otoCtx.NewPlayer(reader)
	otoPlayer.Play()
	<-reader.done

	fmt.Println("Playback finished")
	return nil
}

// engineReader implements io.Reader for continuous audio generation: each
// Read dispatches the block's due MIDI events and renders the engine into
// the requested byte window as 16-bit stereo frames.
type engineReader struct {
	engine *gosfzengine.Engine
	events []timedEvent
	block  int

	left  []float32
	right []float32

	frame      int
	next       int
	tailFrames int
	fadeStart  int
	finished   bool
	done       chan struct{}
}

func (r *engineReader) Read(buf []byte) (int, error) {
	const bytesPerFrame = 4 // 2 channels x int16
	frames := len(buf) / bytesPerFrame

	written := 0
	for written < frames {
		n := frames - written
		if n > r.block {
			n = r.block
		}

		left := r.left[:n]
		right := r.right[:n]
		for i := 0; i < n; i++ {
			left[i] = 0.0
			right[i] = 0.0
		}

		if !r.finished {
			for r.next < len(r.events) && r.events[r.next].frame < r.frame+n {
				r.engine.MidiEvent(r.events[r.next].msg)
				r.next++
			}
			r.engine.Process(left, right)

			if r.next >= len(r.events) {
				if r.fadeStart < 0 {
					r.engine.FadeOut()
					r.fadeStart = r.frame
				}
				if r.engine.FadeOutFinished() || r.frame-r.fadeStart > r.tailFrames {
					r.finished = true
					close(r.done)
				}
			}
		}

		for i := 0; i < n; i++ {
			idx := (written + i) * bytesPerFrame
			l := clampSample(left[i])
			rv := clampSample(right[i])
			buf[idx] = byte(l)
			buf[idx+1] = byte(l >> 8)
			buf[idx+2] = byte(rv)
			buf[idx+3] = byte(rv >> 8)
		}

		r.frame += n
		written += n
	}

	return frames * bytesPerFrame, nil
}

func clampSample(v float32) int16 {
	if v > 1.0 {
		v = 1.0
	}
	if v < -1.0 {
		v = -1.0
	}
	return int16(v * 32767)
}
