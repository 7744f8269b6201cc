// Package note provides pitch, chord and note-value primitives.
package note

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ConcertA is the reference frequency of A4 in Hz.
const ConcertA = 440.0

// semitones maps natural note letters to their offset from C.
var semitones = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// Pitch represents a single named pitch in scientific notation (e.g. "C4", "F#3", "Bb2").
type Pitch struct {
	Name string  // Normalized name as given (letter upper-cased)
	MIDI int     // MIDI note number (C4 = 60)
	Freq float64 // Frequency in Hz, equal temperament
}

// ParsePitch parses a pitch name in scientific notation.
func ParsePitch(name string) (Pitch, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return Pitch{}, errors.Newf("invalid pitch %q", name)
	}

	letter := s[0] &^ 0x20 // upper-case
	base, ok := semitones[letter]
	if !ok {
		return Pitch{}, errors.Newf("invalid pitch letter in %q", name)
	}

	rest := s[1:]
	accidental := 0
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			accidental++
		} else {
			accidental--
		}
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Pitch{}, errors.Wrapf(err, "invalid octave in pitch %q", name)
	}
	if octave < -1 || octave > 9 {
		return Pitch{}, errors.Newf("octave out of range in pitch %q", name)
	}

	midi := (octave+1)*12 + base + accidental
	return Pitch{
		Name: string(letter) + s[1:],
		MIDI: midi,
		Freq: MIDIToFreq(midi),
	}, nil
}

// MustParsePitch is like ParsePitch but panics on error.
// Intended for package-level tables of literal pitch names.
func MustParsePitch(name string) Pitch {
	p, err := ParsePitch(name)
	if err != nil {
		panic(err)
	}
	return p
}

// MIDIToFreq converts a MIDI note number to frequency in Hz.
func MIDIToFreq(midi int) float64 {
	return ConcertA * math.Pow(2, float64(midi-69)/12)
}

// String returns the pitch name.
func (p Pitch) String() string {
	return p.Name
}
