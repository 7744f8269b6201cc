package notification

import "time"

// EventType represents a scheduler event type.
type EventType int

const (
	EventInitialized   EventType = iota // Audio context started and voices built
	EventInitFailed                     // Initialization failed; service stays silent
	EventCueDispatched                  // Cue scheduled on the audio clock
	EventCueUnknown                     // Cue name has no voice
	EventCueFailed                      // Engine rejected a cue
	EventMusicStarted                   // Background sequencer started
	EventMusicStopped                   // Background sequencer stopped
	EventChordFired                     // Background chord scheduled
	EventChordFailed                    // Engine rejected a background chord
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventInitialized:
		return "initialized"
	case EventInitFailed:
		return "init_failed"
	case EventCueDispatched:
		return "cue_dispatched"
	case EventCueUnknown:
		return "cue_unknown"
	case EventCueFailed:
		return "cue_failed"
	case EventMusicStarted:
		return "music_started"
	case EventMusicStopped:
		return "music_stopped"
	case EventChordFired:
		return "chord_fired"
	case EventChordFailed:
		return "chord_failed"
	default:
		return "unknown"
	}
}

// Event represents a scheduler event delivered to subscribers.
type Event struct {
	SequenceNo uint64
	Type       EventType
	Cue        string        // Cue or voice name (cue and music events)
	Chord      []string      // Pitch names (chord events)
	Cursor     int           // Chord index that fired (chord events)
	ChainID    string        // Background loop chain (music and chord events)
	At         time.Duration // Audio clock instant the sound was scheduled for
	Err        error         // Failure cause (failure events)
}
