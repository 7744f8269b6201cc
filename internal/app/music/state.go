// Package music provides the background chord sequencer.
package music

import "github.com/cockroachdb/errors"

// State represents the sequencer state.
type State int

const (
	StateStopped State = iota // No loop active
	StateRunning              // Loop active, chords firing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// ChordPolicy decides what happens to a chord still ringing when the next one fires.
type ChordPolicy int

const (
	PolicyLegato   ChordPolicy = iota // Previous chord rings out over the next
	PolicyStaccato                    // Previous chord is released when the next fires
)

// String returns the string representation of the policy.
func (p ChordPolicy) String() string {
	switch p {
	case PolicyLegato:
		return "legato"
	case PolicyStaccato:
		return "staccato"
	default:
		return "unknown"
	}
}

// ParseChordPolicy parses a policy name.
func ParseChordPolicy(s string) (ChordPolicy, error) {
	switch s {
	case "legato", "":
		return PolicyLegato, nil
	case "staccato":
		return PolicyStaccato, nil
	default:
		return PolicyLegato, errors.Newf("unknown chord policy: %s", s)
	}
}
