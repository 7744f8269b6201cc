// Package cue provides the cue name and cue request domain types.
package cue

import "time"

// Name identifies a semantic sound cue. Cue names double as voice names.
type Name string

const (
	Click           Name = "click"
	Success         Name = "success"
	Error           Name = "error"
	Celebration     Name = "celebration"
	Timer           Name = "timer"
	BackgroundMusic Name = "backgroundMusic"
)

// Known returns the cue names that can be triggered with PlaySound.
// BackgroundMusic is a voice but not a cue.
func Known() []Name {
	return []Name{Click, Success, Error, Celebration, Timer}
}

// DefaultVolume is the volume used when a request does not set one.
const DefaultVolume = 0.5

// Request represents a single cue trigger.
type Request struct {
	Name   Name
	Volume float64       // 0.0 to 1.0
	Delay  time.Duration // Offset from "now" on the audio clock
}

// Option configures a Request.
type Option func(*Request)

// WithVolume sets the request volume. Values are clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(r *Request) {
		r.Volume = clamp(v, 0, 1)
	}
}

// WithDelay sets the schedule delay. Negative delays are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(r *Request) {
		if d < 0 {
			d = 0
		}
		r.Delay = d
	}
}

// NewRequest builds a request for the given cue.
func NewRequest(name Name, opts ...Option) Request {
	r := Request{
		Name:   name,
		Volume: DefaultVolume,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// VolumeToDB maps a 0–1 volume linearly onto [minDB, 0] decibels.
func VolumeToDB(volume, minDB float64) float64 {
	return minDB * (1 - clamp(volume, 0, 1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
