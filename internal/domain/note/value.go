package note

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultBPM is the tempo used when none is configured.
const DefaultBPM = 120

// Common note values at DefaultBPM.
var (
	Whole        = MustValue("1n", DefaultBPM)
	Half         = MustValue("2n", DefaultBPM)
	Quarter      = MustValue("4n", DefaultBPM)
	Eighth       = MustValue("8n", DefaultBPM)
	Sixteenth    = MustValue("16n", DefaultBPM)
	ThirtySecond = MustValue("32n", DefaultBPM)
)

// Value converts a musical note value to a duration at the given tempo.
// Supported forms: "4n" (quarter), "8n." (dotted eighth), "8t" (eighth triplet), "2m" (two 4/4 measures).
func Value(v string, bpm float64) (time.Duration, error) {
	if bpm <= 0 {
		return 0, errors.Newf("invalid tempo %v", bpm)
	}
	s := strings.TrimSpace(v)
	if s == "" {
		return 0, errors.New("empty note value")
	}

	dotted := strings.HasSuffix(s, ".")
	s = strings.TrimSuffix(s, ".")
	if len(s) < 2 {
		return 0, errors.Newf("invalid note value %q", v)
	}

	unit := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, errors.Newf("invalid note value %q", v)
	}

	beat := float64(time.Minute) / bpm
	var d float64
	switch unit {
	case 'n':
		d = 4 * beat / float64(n)
	case 't':
		d = 4 * beat / float64(n) * 2 / 3
	case 'm':
		d = 4 * beat * float64(n)
	default:
		return 0, errors.Newf("invalid note value unit in %q", v)
	}
	if dotted {
		d *= 1.5
	}
	return time.Duration(d), nil
}

// MustValue is like Value but panics on error.
func MustValue(v string, bpm float64) time.Duration {
	d, err := Value(v, bpm)
	if err != nil {
		panic(err)
	}
	return d
}
