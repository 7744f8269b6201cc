package note

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Chord is a set of pitches sounded together.
type Chord []Pitch

// ParseChord parses a list of pitch names into a chord.
func ParseChord(names []string) (Chord, error) {
	if len(names) == 0 {
		return nil, errors.New("chord must have at least one pitch")
	}
	chord := make(Chord, 0, len(names))
	for _, n := range names {
		p, err := ParsePitch(n)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse chord")
		}
		chord = append(chord, p)
	}
	return chord, nil
}

// MustParseChord is like ParseChord but panics on error.
func MustParseChord(names ...string) Chord {
	c, err := ParseChord(names)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseProgression parses an ordered list of chords.
func ParseProgression(chords [][]string) ([]Chord, error) {
	result := make([]Chord, 0, len(chords))
	for i, names := range chords {
		c, err := ParseChord(names)
		if err != nil {
			return nil, errors.Wrapf(err, "chord %d", i)
		}
		result = append(result, c)
	}
	return result, nil
}

// Names returns the pitch names of the chord.
func (c Chord) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name
	}
	return names
}

// String returns the chord as space-separated pitch names.
func (c Chord) String() string {
	return strings.Join(c.Names(), " ")
}
