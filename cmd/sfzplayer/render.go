package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"gosfzengine"
)

var (
	renderRate  int
	renderBlock int
	renderOut   string
	renderTail  float64
)

var renderCmd = &cobra.Command{
	Use:   "render <instrument.sfz> <song.mid>",
	Short: "Render a MIDI file through an SFZ instrument to a WAV file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().IntVar(&renderRate, "rate", 44100, "Output sample rate in Hz")
	renderCmd.Flags().IntVar(&renderBlock, "block", 512, "Render block size in frames")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "out.wav", "Output WAV path")
	renderCmd.Flags().Float64Var(&renderTail, "tail", 10.0, "Maximum release tail to render, in seconds")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	sfzPath, midPath := args[0], args[1]

	player, err := gosfzengine.NewSfzPlayer(sfzPath, "")
	if err != nil {
		return err
	}

	engine, err := player.BuildEngine(float64(renderRate), renderBlock)
	if err != nil {
		return err
	}

	events, err := loadSmfEvents(midPath, float64(renderRate))
	if err != nil {
		return err
	}

	samples := renderEvents(engine, events, renderBlock, renderRate, renderTail)

	if err := writeWav(renderOut, samples, renderRate); err != nil {
		return err
	}

	fmt.Printf("Rendered %d frames to %s\n", len(samples)/2, renderOut)
	return nil
}

// renderEvents drives the engine block by block. Events apply to the block
// they fall into; after the last event the engine fades out and rendering
// stops once every voice is silent (or the tail budget runs out).
func renderEvents(engine *gosfzengine.Engine, events []timedEvent, block, rate int, tail float64) []float32 {
	left := make([]float32, block)
	right := make([]float32, block)
	var out []float32

	frame := 0
	next := 0
	tailFrames := int(tail * float64(rate))
	fadeStart := -1

	for {
		for next < len(events) && events[next].frame < frame+block {
			engine.MidiEvent(events[next].msg)
			next++
		}

		for i := 0; i < block; i++ {
			left[i] = 0.0
			right[i] = 0.0
		}
		engine.Process(left, right)

		for i := 0; i < block; i++ {
			out = append(out, left[i], right[i])
		}
		frame += block

		if next >= len(events) {
			if fadeStart < 0 {
				engine.FadeOut()
				fadeStart = frame
			}
			if engine.FadeOutFinished() || frame-fadeStart > tailFrames {
				break
			}
		}
	}
	return out
}

// writeWav writes interleaved stereo float32 samples as a 16-bit PCM WAV.
func writeWav(path string, samples []float32, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, 2, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		}
		if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * 32767)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write WAV data: %w", err)
	}
	return enc.Close()
}
