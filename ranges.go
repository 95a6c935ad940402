package gosfzengine

import "fmt"

func outOfRangeError(opcode string, lo, hi, v int) error {
	return fmt.Errorf("%s out of range: %d <= %d <= %d", opcode, lo, v, hi)
}

func flippedRangeError(opcode string, v, other int) error {
	return fmt.Errorf("%s flipped range: %d vs %d", opcode, v, other)
}

// VelRange is an inclusive MIDI velocity range. The zero value is invalid;
// use DefaultVelRange (0..127).
type VelRange struct {
	lo uint8
	hi uint8
}

// DefaultVelRange covers every velocity.
func DefaultVelRange() VelRange {
	return VelRange{lo: 0, hi: 127}
}

// SetHi sets the upper bound (hivel). Fails without mutating on values
// outside 0..127 or below the current lower bound.
func (r *VelRange) SetHi(v int) error {
	if v < 0 || v > 127 {
		return outOfRangeError("hivel", 0, 127, v)
	}
	if uint8(v) < r.lo {
		return flippedRangeError("hivel", v, int(r.lo))
	}
	r.hi = uint8(v)
	return nil
}

// SetLo sets the lower bound (lovel).
func (r *VelRange) SetLo(v int) error {
	if v < 0 || v > 127 {
		return outOfRangeError("lovel", 0, 127, v)
	}
	if uint8(v) > r.hi {
		return flippedRangeError("lovel", v, int(r.hi))
	}
	r.lo = uint8(v)
	return nil
}

// Covering reports whether the velocity falls inside the range.
func (r *VelRange) Covering(vel uint8) bool {
	return vel >= r.lo && vel <= r.hi
}

// NoteRange is an inclusive MIDI note range where either endpoint may be
// disabled (-1). A range with a disabled endpoint covers nothing.
type NoteRange struct {
	lo    uint8
	hi    uint8
	hasLo bool
	hasHi bool
}

// DefaultNoteRange covers every note.
func DefaultNoteRange() NoteRange {
	return NoteRange{lo: 0, hi: 127, hasLo: true, hasHi: true}
}

// SetHi sets the upper bound (hikey). -1 disables the endpoint.
func (r *NoteRange) SetHi(v int) error {
	if v == -1 {
		r.hasHi = false
		return nil
	}
	if v < 0 || v > 127 {
		return outOfRangeError("hikey", -1, 127, v)
	}
	if r.hasLo && uint8(v) < r.lo {
		return flippedRangeError("hikey", v, int(r.lo))
	}
	r.hi = uint8(v)
	r.hasHi = true
	return nil
}

// SetLo sets the lower bound (lokey). -1 disables the endpoint.
func (r *NoteRange) SetLo(v int) error {
	if v == -1 {
		r.hasLo = false
		return nil
	}
	if v < 0 || v > 127 {
		return outOfRangeError("lokey", -1, 127, v)
	}
	if r.hasHi && uint8(v) > r.hi {
		return flippedRangeError("lokey", v, int(r.hi))
	}
	r.lo = uint8(v)
	r.hasLo = true
	return nil
}

// Covering reports whether the note falls inside the range. Ranges with a
// disabled endpoint never match.
func (r *NoteRange) Covering(note uint8) bool {
	if !r.hasLo || !r.hasHi {
		return false
	}
	return note >= r.lo && note <= r.hi
}

// RandomRange gates region firing on the per-event random draw. The
// comparison is half-open: lo <= r < hi. A degenerate range (hi == lo, the
// unset default) matches every draw.
type RandomRange struct {
	lo float64
	hi float64
}

// SetHi sets the upper bound (hirand).
func (r *RandomRange) SetHi(v float64) error {
	if v < 0.0 || v > 1.0 {
		return fmt.Errorf("hirand out of range: 0 <= %g <= 1", v)
	}
	if v < r.lo && r.lo > 0.0 {
		return fmt.Errorf("hirand flipped range: %g vs %g", v, r.lo)
	}
	r.hi = v
	return nil
}

// SetLo sets the lower bound (lorand).
func (r *RandomRange) SetLo(v float64) error {
	if v < 0.0 || v > 1.0 {
		return fmt.Errorf("lorand out of range: 0 <= %g <= 1", v)
	}
	if v > r.hi && r.hi > 0.0 {
		return fmt.Errorf("lorand flipped range: %g vs %g", v, r.hi)
	}
	r.lo = v
	return nil
}

// Covering reports whether the draw selects this region.
func (r *RandomRange) Covering(draw float64) bool {
	if r.hi == r.lo {
		return true
	}
	return draw >= r.lo && draw < r.hi
}

// ControlValRange is an inclusive controller-value range where either
// endpoint may be disabled (negative assignment). A range with a disabled
// endpoint covers nothing.
type ControlValRange struct {
	lo    uint8
	hi    uint8
	hasLo bool
	hasHi bool
}

// SetHi sets the upper bound (on_hiccN). Negative values disable it.
func (r *ControlValRange) SetHi(v int) error {
	if v < 0 {
		r.hasHi = false
		return nil
	}
	if v > 127 {
		return outOfRangeError("on_hiccN", 0, 127, v)
	}
	if r.hasLo && uint8(v) < r.lo {
		return flippedRangeError("on_hiccN", v, int(r.lo))
	}
	r.hi = uint8(v)
	r.hasHi = true
	return nil
}

// SetLo sets the lower bound (on_loccN). Negative values disable it.
func (r *ControlValRange) SetLo(v int) error {
	if v < 0 {
		r.hasLo = false
		return nil
	}
	if v > 127 {
		return outOfRangeError("on_loccN", 0, 127, v)
	}
	if r.hasHi && uint8(v) > r.hi {
		return flippedRangeError("on_loccN", v, int(r.hi))
	}
	r.lo = uint8(v)
	r.hasLo = true
	return nil
}

// Covering reports whether the controller value falls inside the range.
func (r *ControlValRange) Covering(val uint8) bool {
	if !r.hasLo || !r.hasHi {
		return false
	}
	return val >= r.lo && val <= r.hi
}
