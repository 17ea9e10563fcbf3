package structuring

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"vidscribe/models"
)

// ParseError marks a structuring response that failed strict validation. It
// is fatal for the attempt; a non-conforming payload is never coerced.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "structuring response rejected: " + e.Reason
}

// Pointer fields distinguish a missing key from a zero value. A missing
// "highlighted" deliberately defaults to false: a segment is only a
// highlight when the classifier says so explicitly.
type segmentPayload struct {
	ID          *int     `json:"id"`
	Start       *float64 `json:"start"`
	End         *float64 `json:"end"`
	Text        string   `json:"text"`
	Highlighted bool     `json:"highlighted"`
}

type sectionPayload struct {
	ID       int              `json:"id"`
	Title    string           `json:"title"`
	Segments []segmentPayload `json:"segments"`
}

// Parse validates a model response against the section/segment contract and
// the input id set. Every input id must appear exactly once across the
// output sections; reordering across sections is permitted, drops,
// duplicates and invented ids are not.
func Parse(content string, raw []models.RawSegment) (*Result, error) {
	payload := extractJSONArray(content)
	if payload == "" {
		return nil, &ParseError{Reason: "no JSON array in response"}
	}

	var sections []sectionPayload
	if err := json.Unmarshal([]byte(payload), &sections); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(sections) == 0 {
		return nil, &ParseError{Reason: "empty section list for non-empty input"}
	}

	inputIDs := make(map[int]bool, len(raw))
	for _, seg := range raw {
		inputIDs[seg.ID] = false
	}

	sectionIDs := make(map[int]bool, len(sections))
	transcript := make(models.Transcript, 0, len(sections))
	highlighted := 0

	for _, sec := range sections {
		if sec.ID <= 0 {
			return nil, &ParseError{Reason: fmt.Sprintf("section id %d is not positive", sec.ID)}
		}
		if sectionIDs[sec.ID] {
			return nil, &ParseError{Reason: fmt.Sprintf("duplicate section id %d", sec.ID)}
		}
		sectionIDs[sec.ID] = true

		section := models.Section{ID: sec.ID, Title: sec.Title}
		for _, seg := range sec.Segments {
			if seg.ID == nil {
				return nil, &ParseError{Reason: "segment without id"}
			}
			if seg.Start == nil || seg.End == nil {
				return nil, &ParseError{Reason: fmt.Sprintf("segment %d is missing start or end", *seg.ID)}
			}
			if *seg.Start < 0 || *seg.End <= *seg.Start {
				return nil, &ParseError{Reason: fmt.Sprintf("segment %d has invalid time range [%g, %g]", *seg.ID, *seg.Start, *seg.End)}
			}
			seen, known := inputIDs[*seg.ID]
			if !known {
				return nil, &ParseError{Reason: fmt.Sprintf("segment id %d was not in the input", *seg.ID)}
			}
			if seen {
				return nil, &ParseError{Reason: fmt.Sprintf("segment id %d appears more than once", *seg.ID)}
			}
			inputIDs[*seg.ID] = true

			if seg.Highlighted {
				highlighted++
			}
			section.Segments = append(section.Segments, models.Segment{
				ID:          *seg.ID,
				Start:       *seg.Start,
				End:         *seg.End,
				Text:        seg.Text,
				Highlighted: seg.Highlighted,
			})
		}
		// Establish the within-section ordering invariant.
		sort.SliceStable(section.Segments, func(i, j int) bool {
			return section.Segments[i].Start < section.Segments[j].Start
		})
		transcript = append(transcript, section)
	}

	for id, seen := range inputIDs {
		if !seen {
			return nil, &ParseError{Reason: fmt.Sprintf("segment id %d was dropped", id)}
		}
	}

	return &Result{
		Transcript:           transcript,
		DegenerateHighlights: highlighted == 0 && len(raw) > 0,
	}, nil
}

// extractJSONArray defensively locates the outermost JSON array. The prompt
// forbids surrounding prose, but models wrap responses in markdown fences
// often enough that rejecting outright would fail runs that carry a fully
// valid payload.
func extractJSONArray(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
