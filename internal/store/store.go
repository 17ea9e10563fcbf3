package store

import (
	"errors"
	"sort"
	"sync"

	"vidscribe/models"
)

var (
	// ErrSegmentNotFound is returned when an edit targets an unknown segment id.
	ErrSegmentNotFound = errors.New("segment not found")
	// ErrSectionNotFound is returned when an edit targets an unknown section id.
	ErrSectionNotFound = errors.New("section not found")
)

// Store holds the committed transcript for one session. Every mutation is an
// atomic read-modify-write that recomputes the derived highlight set before
// returning, so readers never observe the flags and the set disagreeing.
// Edits change text, titles and highlight flags only; segment ids, times and
// section membership are fixed at commit time.
type Store struct {
	mu         sync.RWMutex
	transcript models.Transcript
	duration   float64
	highlights []models.Segment
}

// New commits a transcript and its total media duration. The duration comes
// from the recognition stage and may exceed the last segment's end.
func New(transcript models.Transcript, duration float64) *Store {
	s := &Store{
		transcript: transcript.Clone(),
		duration:   duration,
	}
	s.recomputeHighlights()
	return s
}

// Transcript returns a deep copy of the current transcript.
func (s *Store) Transcript() models.Transcript {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transcript.Clone()
}

// Duration returns the total media duration in seconds.
func (s *Store) Duration() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

// Highlights returns the derived highlight set: every segment currently
// flagged highlighted, sorted by start time ascending regardless of which
// section it lives in.
func (s *Store) Highlights() []models.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Segment, len(s.highlights))
	copy(out, s.highlights)
	return out
}

// SegmentsByTime returns every segment across all sections sorted by start
// time ascending, the order subtitle export wants.
func (s *Store) SegmentsByTime() []models.Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.transcript.Segments()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// EditSegmentText replaces the text of the segment with the given id and
// returns the updated segment.
func (s *Store) EditSegmentText(id int, text string) (models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for si := range s.transcript {
		for gi := range s.transcript[si].Segments {
			if s.transcript[si].Segments[gi].ID == id {
				s.transcript[si].Segments[gi].Text = text
				s.recomputeHighlights()
				return s.transcript[si].Segments[gi], nil
			}
		}
	}
	return models.Segment{}, ErrSegmentNotFound
}

// EditSectionTitle replaces the title of the section with the given id and
// returns the updated section.
func (s *Store) EditSectionTitle(id int, title string) (models.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for si := range s.transcript {
		if s.transcript[si].ID == id {
			s.transcript[si].Title = title
			s.recomputeHighlights()
			section := s.transcript[si]
			section.Segments = append([]models.Segment(nil), section.Segments...)
			return section, nil
		}
	}
	return models.Section{}, ErrSectionNotFound
}

// ToggleHighlight flips the highlight flag of the segment with the given id
// and returns the updated segment.
func (s *Store) ToggleHighlight(id int) (models.Segment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for si := range s.transcript {
		for gi := range s.transcript[si].Segments {
			if s.transcript[si].Segments[gi].ID == id {
				s.transcript[si].Segments[gi].Highlighted = !s.transcript[si].Segments[gi].Highlighted
				s.recomputeHighlights()
				return s.transcript[si].Segments[gi], nil
			}
		}
	}
	return models.Segment{}, ErrSegmentNotFound
}

// recomputeHighlights rebuilds the derived set. Callers must hold the write
// lock; this is the only place the set is produced.
func (s *Store) recomputeHighlights() {
	var out []models.Segment
	for _, section := range s.transcript {
		for _, seg := range section.Segments {
			if seg.Highlighted {
				out = append(out, seg)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	s.highlights = out
}
