package dispatch

import (
	"fmt"

	"github.com/amishk599/jobradar/internal/model"
)

// Kind selects how a profile scores jobs.
type Kind string

const (
	// KindSingle scores against one reference text.
	KindSingle Kind = "single"
	// KindMulti scores against several reference texts and keeps the best.
	KindMulti Kind = "multi"
)

// DefaultMinFitScore is the threshold used when a profile sets none.
const DefaultMinFitScore = 60

// Profile is one configured search persona. It is resolved once at startup
// and never re-checked by name.
type Profile struct {
	Name        string
	Kind        Kind
	Tracks      []model.Track
	MinFitScore int
}

// NewSingle builds a single-track profile.
func NewSingle(name string, track model.Track, minFitScore int) (Profile, error) {
	p := Profile{Name: name, Kind: KindSingle, Tracks: []model.Track{track}, MinFitScore: minFitScore}
	return p, p.Validate()
}

// NewMulti builds a profile that scores every job once per track.
func NewMulti(name string, tracks []model.Track, minFitScore int) (Profile, error) {
	p := Profile{Name: name, Kind: KindMulti, Tracks: tracks, MinFitScore: minFitScore}
	return p, p.Validate()
}

// Validate checks the track layout matches the profile kind.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	switch p.Kind {
	case KindSingle:
		if len(p.Tracks) != 1 {
			return fmt.Errorf("profile %q: single profile needs exactly 1 track, got %d", p.Name, len(p.Tracks))
		}
	case KindMulti:
		if len(p.Tracks) < 2 {
			return fmt.Errorf("profile %q: multi profile needs at least 2 tracks, got %d", p.Name, len(p.Tracks))
		}
	default:
		return fmt.Errorf("profile %q: unknown kind %q", p.Name, p.Kind)
	}

	seen := make(map[string]bool, len(p.Tracks))
	for _, t := range p.Tracks {
		if t.Key == "" {
			return fmt.Errorf("profile %q: track key is required", p.Name)
		}
		if seen[t.Key] {
			return fmt.Errorf("profile %q: duplicate track %q", p.Name, t.Key)
		}
		seen[t.Key] = true
	}
	if p.MinFitScore < 0 || p.MinFitScore > 100 {
		return fmt.Errorf("profile %q: min_fit_score %d out of range 0-100", p.Name, p.MinFitScore)
	}
	return nil
}

// TrackKeys returns the track keys in order.
func (p Profile) TrackKeys() []string {
	keys := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		keys[i] = t.Key
	}
	return keys
}
