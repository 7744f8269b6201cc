package audio

import (
	"time"

	"github.com/osa030/quizsound/internal/domain/cue"
	"github.com/osa030/quizsound/internal/domain/note"
)

// step is one attack/release of a chord, offset from the cue's start on
// the audio clock.
type step struct {
	chord  note.Chord
	length time.Duration
	offset time.Duration
}

// pattern is what a cue plays. followUp steps are triggered on a real-time
// timer after followUpDelay.
type pattern struct {
	steps         []step
	followUp      []step
	followUpDelay time.Duration
}

func (p pattern) names() []string {
	var names []string
	for _, st := range p.steps {
		names = append(names, st.chord.Names()...)
	}
	return names
}

func newPatterns(c Config) map[cue.Name]pattern {
	eighth := note.MustValue("8n", c.BPM)

	return map[cue.Name]pattern{
		cue.Click: {
			steps: []step{{chord: note.MustParseChord("C5"), length: note.MustValue("32n", c.BPM)}},
		},
		// I then ii
		cue.Success: {
			steps:         []step{{chord: note.MustParseChord("C4", "E4", "G4"), length: eighth}},
			followUp:      []step{{chord: note.MustParseChord("D4", "F4", "A4"), length: eighth}},
			followUpDelay: c.SuccessFollowUp,
		},
		cue.Error: {
			steps: []step{{chord: note.MustParseChord("C3", "F#3"), length: eighth}},
		},
		cue.Celebration: {
			steps: arpeggio(c.ArpeggioStep, eighth, "C4", "E4", "G4", "C5"),
		},
		cue.Timer: {
			steps: []step{{chord: note.MustParseChord("A5"), length: note.MustValue("16n", c.BPM)}},
		},
	}
}

func arpeggio(stepOffset, length time.Duration, pitches ...string) []step {
	steps := make([]step, 0, len(pitches))
	for i, p := range pitches {
		steps = append(steps, step{
			chord:  note.MustParseChord(p),
			length: length,
			offset: time.Duration(i) * stepOffset,
		})
	}
	return steps
}
