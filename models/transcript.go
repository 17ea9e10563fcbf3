package models

// RawSegment is a single timestamped line as returned by the speech
// recognition stage, before any sectioning has been applied.
type RawSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Segment is a single timestamped line of transcript text with a highlight flag.
type Segment struct {
	ID          int     `json:"id"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	Highlighted bool    `json:"highlighted"`
}

// Section is a titled group of segments, ordered by start time ascending.
type Section struct {
	ID       int       `json:"id"`
	Title    string    `json:"title"`
	Segments []Segment `json:"segments"`
}

// Transcript is the ordered list of sections produced by a pipeline run.
type Transcript []Section

// Segments returns every segment in section-major order.
func (t Transcript) Segments() []Segment {
	var out []Segment
	for _, section := range t {
		out = append(out, section.Segments...)
	}
	return out
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing the backing slices to mutation.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	for i, section := range t {
		out[i] = section
		out[i].Segments = make([]Segment, len(section.Segments))
		copy(out[i].Segments, section.Segments)
	}
	return out
}
