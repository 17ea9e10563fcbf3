package playback

import (
	"errors"
	"sync"

	"vidscribe/internal/store"
)

// Mode is the playback mode the sync engine is driving.
type Mode string

const (
	// ModeFull plays the whole video; the engine only derives subtitles.
	ModeFull Mode = "full"
	// ModeHighlight plays highlighted segments only, auto-seeking across gaps.
	ModeHighlight Mode = "highlight"
)

// ErrNoHighlights rejects entering highlight mode while the highlight set is
// empty. The caller is expected to surface this as a notice instead of
// silently falling back to full playback.
var ErrNoHighlights = errors.New("no highlighted segments to play")

// Update tells the player what to do after a position report.
type Update struct {
	// Subtitle is the active subtitle text, empty when no segment covers the
	// reported position.
	Subtitle string `json:"subtitle"`
	// Seek, when set, is the position the player must jump to.
	Seek *float64 `json:"seek,omitempty"`
	// Stop tells the player to pause; set together with EndOfHighlights.
	Stop bool `json:"stop"`
	// EndOfHighlights reports that highlight playback is exhausted and the
	// position has been reset to the start of the media.
	EndOfHighlights bool `json:"end_of_highlights"`
}

// State is a snapshot of the engine for status reads.
type State struct {
	Mode            Mode    `json:"mode"`
	Position        float64 `json:"position"`
	EndOfHighlights bool    `json:"end_of_highlights"`
}

// Sync couples the continuous media position to the transcript store. It
// derives the active subtitle on every position report and, in highlight
// mode, decides when to jump the player across non-highlighted gaps.
type Sync struct {
	mu       sync.Mutex
	store    *store.Store
	mode     Mode
	position float64
	// ended marks the EndOfHighlights terminal sub-state. Only an explicit
	// switch back to full mode clears it.
	ended bool
}

// New creates a sync engine in full mode at position zero.
func New(st *store.Store) *Sync {
	return &Sync{store: st, mode: ModeFull}
}

// State returns the current mode and position.
func (s *Sync) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Mode: s.mode, Position: s.position, EndOfHighlights: s.ended}
}

// SetMode switches playback mode. Entering highlight mode is rejected with
// ErrNoHighlights while the highlight set is empty; the mode is left
// unchanged in that case.
func (s *Sync) SetMode(mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == s.mode {
		return nil
	}
	if mode == ModeHighlight && len(s.store.Highlights()) == 0 {
		return ErrNoHighlights
	}
	s.mode = mode
	s.ended = false
	return nil
}

// UpdatePosition records a position report from the media clock and returns
// what the player should do. Reports arrive continuously, not on a fixed
// interval; every decision here is made from scratch against the current
// store state so live edits take effect immediately.
func (s *Sync) UpdatePosition(position float64) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.position = position
	up := Update{Subtitle: s.activeSubtitle(position)}

	if s.mode != ModeHighlight || s.ended {
		return up
	}

	highlights := s.store.Highlights()
	for _, seg := range highlights {
		if position >= seg.Start && position < seg.End {
			return up
		}
	}
	for _, seg := range highlights {
		if seg.Start > position {
			target := seg.Start
			up.Seek = &target
			return up
		}
	}

	// No highlighted segment ahead: stop and reset to the start of the media.
	up.Stop = true
	up.EndOfHighlights = true
	s.ended = true
	s.position = 0
	return up
}

// activeSubtitle scans segments in section-major order; the first segment
// with start <= position < end wins. Linear in the segment count, which is
// bounded for the short clips this serves.
func (s *Sync) activeSubtitle(position float64) string {
	for _, section := range s.store.Transcript() {
		for _, seg := range section.Segments {
			if position >= seg.Start && position < seg.End {
				return seg.Text
			}
		}
	}
	return ""
}
