package gosfzengine

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/GeoffreyPlitt/debuggo"
)

var parserDebug = debuggo.Debug("sfzengine:parser")

// SfzData represents the parsed SFZ file structure
type SfzData struct {
	Global  *SfzSection
	Groups  []*SfzSection
	Regions []*SfzSection
}

// SfzSection represents a section in the SFZ file (global, group, or region)
type SfzSection struct {
	Type        string            // "global", "group", or "region"
	Opcodes     map[string]string // opcode name -> value
	ParentGroup *SfzSection       // For regions: the group they belong to (nil if no group)
	GlobalRef   *SfzSection       // Reference to the global section for inheritance
}

// ParseSfzFile parses an SFZ file and returns the structured data
func ParseSfzFile(filePath string) (*SfzData, error) {
	parserDebug("Starting to parse SFZ file: %s", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SFZ file: %w", err)
	}
	defer file.Close()

	sfzData := &SfzData{
		Groups:  make([]*SfzSection, 0),
		Regions: make([]*SfzSection, 0),
	}

	scanner := bufio.NewScanner(file)
	lineNum := 0
	var currentSection *SfzSection
	var currentGroup *SfzSection // Track the current group for region inheritance

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		parserDebug("Parsing line %d: %s", lineNum, line)

		// Check for section headers; opcodes may follow on the same line
		if end := strings.Index(line, ">"); strings.HasPrefix(line, "<") && end != -1 {
			sectionType := strings.ToLower(strings.TrimSpace(line[1:end]))
			rest := strings.TrimSpace(line[end+1:])
			parserDebug("Found section: %s", sectionType)

			currentSection = &SfzSection{
				Type:    sectionType,
				Opcodes: make(map[string]string),
			}

			switch sectionType {
			case "global":
				sfzData.Global = currentSection
			case "group":
				currentGroup = currentSection
				currentSection.GlobalRef = sfzData.Global
				sfzData.Groups = append(sfzData.Groups, currentSection)
			case "region":
				currentSection.ParentGroup = currentGroup
				currentSection.GlobalRef = sfzData.Global
				sfzData.Regions = append(sfzData.Regions, currentSection)
			default:
				parserDebug("Warning: Unknown section type: %s", sectionType)
			}
			if rest != "" {
				parseOpcodes(rest, currentSection, lineNum)
			}
			continue
		}

		// Parse opcodes
		if currentSection != nil {
			parseOpcodes(line, currentSection, lineNum)
		} else {
			parserDebug("Warning: Opcode found outside of section at line %d: %s", lineNum, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SFZ file: %w", err)
	}

	parserDebug("Parsing complete. Found %d regions, %d groups", len(sfzData.Regions), len(sfzData.Groups))
	return sfzData, nil
}

// parseOpcodes parses a line containing opcodes and adds them to the section
func parseOpcodes(line string, section *SfzSection, lineNum int) {
	parts := strings.Fields(line)

	for _, part := range parts {
		// Skip comments that might appear inline
		if strings.HasPrefix(part, "//") {
			break
		}

		equalIndex := strings.Index(part, "=")
		if equalIndex == -1 {
			continue // Skip parts without =
		}

		opcode := strings.ToLower(strings.TrimSpace(part[:equalIndex]))
		value := strings.TrimSpace(part[equalIndex+1:])

		if isKnownOpcode(opcode) {
			section.Opcodes[opcode] = value
			parserDebug("Parsed opcode: %s = %s", opcode, value)
		} else {
			parserDebug("Warning: Unknown opcode '%s' at line %d", opcode, lineNum)
		}
	}
}

// isKnownOpcode checks if an opcode is in our supported list
func isKnownOpcode(opcode string) bool {
	if strings.HasPrefix(opcode, "on_locc") || strings.HasPrefix(opcode, "on_hicc") {
		_, err := strconv.Atoi(opcode[len("on_locc"):])
		return err == nil
	}

	knownOpcodes := map[string]bool{
		// Critical Core
		"sample": true,

		// Key/Velocity Mapping
		"lokey": true,
		"hikey": true,
		"lovel": true,
		"hivel": true,
		"key":   true,

		// Random layer selection
		"lorand": true,
		"hirand": true,

		// Basic Playback
		"volume":          true,
		"pitch_keycenter": true,
		"pitch_keytrack":  true,
		"amp_veltrack":    true,

		// Envelope
		"ampeg_attack":  true,
		"ampeg_hold":    true,
		"ampeg_decay":   true,
		"ampeg_sustain": true,
		"ampeg_release": true,

		// Common Adjustments
		"tune": true,

		// Groups and Exclusion
		"group":  true,
		"off_by": true,

		// Trigger Modes
		"trigger":  true,
		"rt_decay": true,
	}

	return knownOpcodes[opcode]
}

// getInheritedValue performs inheritance lookup for any opcode
func (s *SfzSection) getInheritedValue(opcode string) (string, bool) {
	if s == nil {
		return "", false
	}

	// First check this section
	if value, exists := s.Opcodes[opcode]; exists {
		return value, true
	}

	// Then check parent group (for regions only)
	if s.ParentGroup != nil {
		if value, exists := s.ParentGroup.Opcodes[opcode]; exists {
			return value, true
		}
	}

	// Finally check global
	if s.GlobalRef != nil {
		if value, exists := s.GlobalRef.Opcodes[opcode]; exists {
			return value, true
		}
	}

	return "", false
}

// GetStringOpcode returns a string opcode value, or empty string if not found
func (s *SfzSection) GetStringOpcode(opcode string) string {
	if s == nil || s.Opcodes == nil {
		return ""
	}
	return s.Opcodes[opcode]
}

// GetInheritedStringOpcode returns a string opcode value with inheritance
// (Region -> Group -> Global)
func (s *SfzSection) GetInheritedStringOpcode(opcode string) string {
	value, _ := s.getInheritedValue(opcode)
	return value
}

// inheritedOpcodes collects the effective opcode set of a region section:
// global first, then group, then the region itself, so later levels win.
func (s *SfzSection) inheritedOpcodes() map[string]string {
	merged := make(map[string]string)
	for _, level := range []*SfzSection{s.GlobalRef, s.ParentGroup, s} {
		if level == nil {
			continue
		}
		for opcode, value := range level.Opcodes {
			merged[opcode] = value
		}
	}
	return merged
}

// BuildRegionData validates a region section's effective opcodes into a
// RegionData record. Any range violation or malformed value is an error;
// the engine only ever sees checked data.
func (s *SfzSection) BuildRegionData() (RegionData, error) {
	rd := NewRegionData()

	merged := s.inheritedOpcodes()
	opcodes := make([]string, 0, len(merged))
	for opcode := range merged {
		opcodes = append(opcodes, opcode)
	}
	// Deterministic application order; sorting also lands every hi bound
	// before its lo bound, so partially specified ranges validate the same
	// way on every parse.
	sort.Strings(opcodes)

	for _, opcode := range opcodes {
		if err := applyOpcode(&rd, opcode, merged[opcode]); err != nil {
			return rd, err
		}
	}
	return rd, nil
}

func applyOpcode(rd *RegionData, opcode, value string) error {
	parseInt := func() (int, error) {
		v, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %s", opcode, value)
		}
		return v, nil
	}
	parseFloat := func() (float64, error) {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %s", opcode, value)
		}
		return v, nil
	}

	switch {
	case opcode == "sample":
		rd.SetSample(value)
		return nil
	case opcode == "lokey":
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.KeyRange.SetLo(v)
	case opcode == "hikey":
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.KeyRange.SetHi(v)
	case opcode == "key":
		v, err := parseInt()
		if err != nil {
			return err
		}
		if err := rd.KeyRange.SetHi(v); err != nil {
			return err
		}
		if err := rd.KeyRange.SetLo(v); err != nil {
			return err
		}
		return rd.SetPitchKeycenter(v)
	case opcode == "lovel":
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.VelRange.SetLo(v)
	case opcode == "hivel":
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.VelRange.SetHi(v)
	case opcode == "lorand":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.RandomRange.SetLo(v)
	case opcode == "hirand":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.RandomRange.SetHi(v)
	case opcode == "volume":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.SetVolume(v)
	case opcode == "pitch_keycenter":
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.SetPitchKeycenter(v)
	case opcode == "pitch_keytrack":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.SetPitchKeytrack(v)
	case opcode == "amp_veltrack":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.SetAmpVeltrack(v)
	case opcode == "ampeg_attack":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.Ampeg.SetAttack(v)
	case opcode == "ampeg_hold":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.Ampeg.SetHold(v)
	case opcode == "ampeg_decay":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.Ampeg.SetDecay(v)
	case opcode == "ampeg_sustain":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.Ampeg.SetSustain(v)
	case opcode == "ampeg_release":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.Ampeg.SetRelease(v)
	case opcode == "tune":
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.SetTune(v)
	case opcode == "rt_decay":
		v, err := parseFloat()
		if err != nil {
			return err
		}
		return rd.SetRtDecay(v)
	case opcode == "trigger":
		t, err := ParseTrigger(value)
		if err != nil {
			return err
		}
		rd.SetTrigger(t)
		return nil
	case opcode == "group":
		v, err := parseInt()
		if err != nil {
			return err
		}
		if v < 0 {
			return outOfRangeError("group", 0, 1<<31-1, v)
		}
		rd.SetGroup(uint32(v))
		return nil
	case opcode == "off_by":
		v, err := parseInt()
		if err != nil {
			return err
		}
		if v < 0 {
			return outOfRangeError("off_by", 0, 1<<31-1, v)
		}
		rd.SetOffBy(uint32(v))
		return nil
	case strings.HasPrefix(opcode, "on_locc"):
		cc, err := strconv.Atoi(opcode[len("on_locc"):])
		if err != nil || cc < 0 || cc > 127 {
			return fmt.Errorf("invalid controller number in %s", opcode)
		}
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.PushOnLoCc(uint8(cc), v)
	case strings.HasPrefix(opcode, "on_hicc"):
		cc, err := strconv.Atoi(opcode[len("on_hicc"):])
		if err != nil || cc < 0 || cc > 127 {
			return fmt.Errorf("invalid controller number in %s", opcode)
		}
		v, err := parseInt()
		if err != nil {
			return err
		}
		return rd.PushOnHiCc(uint8(cc), v)
	}
	parserDebug("Warning: opcode %s has no region binding", opcode)
	return nil
}

// ParseSfzRegions parses an SFZ file into validated region records.
func ParseSfzRegions(filePath string) ([]RegionData, error) {
	sfzData, err := ParseSfzFile(filePath)
	if err != nil {
		return nil, err
	}

	regions := make([]RegionData, 0, len(sfzData.Regions))
	for i, section := range sfzData.Regions {
		rd, err := section.BuildRegionData()
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		regions = append(regions, rd)
	}
	return regions, nil
}
