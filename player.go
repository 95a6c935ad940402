package gosfzengine

import (
	"fmt"
	"path/filepath"

	"github.com/GeoffreyPlitt/debuggo"
)

var debug = debuggo.Debug("sfzengine:player")

// SfzPlayer loads an SFZ instrument: it parses the file, loads every
// referenced sample and builds engines over the result. One player can
// build engines for any host rate; the parsed data is immutable.
type SfzPlayer struct {
	regions     []RegionData
	sampleCache *SampleCache
	sfzDir      string      // Directory containing the SFZ file for relative sample paths
	jackClient  *JackClient // Internal JACK client (nil if JACK not available)
}

// NewSfzPlayer creates a new SFZ player from an SFZ file. When
// jackClientName is non-empty it also tries to start a JACK client named
// that way; failure to reach JACK is not fatal — the player still works
// for offline rendering.
func NewSfzPlayer(sfzPath string, jackClientName string) (*SfzPlayer, error) {
	debug("Creating new SFZ player for file: %s", sfzPath)

	regions, err := ParseSfzRegions(sfzPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SFZ player: %w", err)
	}

	debug("Successfully parsed SFZ file with %d regions", len(regions))

	player := &SfzPlayer{
		regions:     regions,
		sampleCache: NewSampleCache(),
		sfzDir:      filepath.Dir(sfzPath),
	}

	if err := player.loadAllSamples(); err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}

	if jackClientName != "" {
		jackClient, err := NewJackClient(player, jackClientName)
		if err != nil {
			debug("Warning: Could not create JACK client: %v", err)
			// Continue without JACK - player still works for offline rendering
		} else {
			if err := jackClient.Start(); err != nil {
				debug("Warning: Could not start JACK client: %v", err)
				jackClient.Close()
			} else {
				player.jackClient = jackClient
				debug("JACK client started successfully as '%s'", jackClientName)
			}
		}
	}

	return player, nil
}

// loadAllSamples loads all sample files referenced in the SFZ regions
func (p *SfzPlayer) loadAllSamples() error {
	debug("Loading all samples referenced in SFZ file")

	for i, region := range p.regions {
		samplePath := region.Sample()
		if samplePath == "" {
			debug("Warning: Region %d has no sample opcode", i)
			continue
		}

		debug("Loading sample for region %d: %s", i, samplePath)
		if _, err := p.sampleCache.LoadSampleRelative(p.sfzDir, samplePath); err != nil {
			return fmt.Errorf("failed to load sample '%s' for region %d: %w", samplePath, i, err)
		}
	}

	debug("Successfully loaded %d unique samples", p.sampleCache.Size())
	return nil
}

// GetSample returns the loaded sample for a given region-relative path.
func (p *SfzPlayer) GetSample(samplePath string) (*Sample, error) {
	sample, exists := p.sampleCache.GetSample(filepath.Join(p.sfzDir, samplePath))
	if !exists {
		return nil, fmt.Errorf("sample not found: %s", samplePath)
	}
	return sample, nil
}

// Regions returns the validated region records.
func (p *SfzPlayer) Regions() []RegionData {
	return p.regions
}

// BuildEngine assembles a fresh engine over the loaded instrument for the
// given host sample rate and maximum block length. Regions without a
// sample opcode are skipped.
func (p *SfzPlayer) BuildEngine(samplerate float64, maxBlockLength int) (*Engine, error) {
	configs := make([]RegionConfig, 0, len(p.regions))
	for i, region := range p.regions {
		if region.Sample() == "" {
			continue
		}
		sample, err := p.GetSample(region.Sample())
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		configs = append(configs, RegionConfig{
			Data:       region,
			SampleData: sample.Data,
			SampleRate: float64(sample.SampleRate),
		})
	}
	return NewEngine(configs, samplerate, maxBlockLength), nil
}

// StopAndClose stops and closes the internal JACK client if it's running
func (p *SfzPlayer) StopAndClose() error {
	if p.jackClient != nil {
		debug("Stopping and closing JACK client")

		if err := p.jackClient.Stop(); err != nil {
			debug("Warning: Error stopping JACK client: %v", err)
		}

		if err := p.jackClient.Close(); err != nil {
			debug("Warning: Error closing JACK client: %v", err)
			return fmt.Errorf("failed to close JACK client: %w", err)
		}

		p.jackClient = nil
		debug("JACK client stopped and closed")
	}
	return nil
}
