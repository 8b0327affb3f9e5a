package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/timeline/pkg/errors"
)

// Timeline is a decoded timeline document. It is never mutated after loading.
type Timeline struct {
	Duration float64 `json:"duration"` // total time span in µs
	Nodes    []Node  `json:"nodes"`
}

// Node is one row of the chart.
type Node struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Jobs []Job  `json:"jobs"`
}

// Label returns the row label drawn in the label column, "name (type)".
func (n Node) Label() string {
	return n.Name + " (" + n.Type + ")"
}

// Job is a time interval [From, To) in µs drawn as one rectangle.
type Job struct {
	From float64 `json:"from"`
	To   float64 `json:"to"`
	Tag  Tag     `json:"t"`
}

// Tag is the raw JSON value of a job's "t" field. Any JSON value is allowed;
// String renders it as the rectangle caption.
type Tag json.RawMessage

// String returns the caption text for the tag. Strings are shown unquoted,
// numbers keep their literal spelling ("1" stays "1", "1.0" stays "1.0"),
// and arrays and objects are shown as compact JSON.
func (t Tag) String() string {
	raw := bytes.TrimSpace(t)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[', '{':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}
	return string(raw)
}

// MarshalJSON emits the tag's original JSON value.
func (t Tag) MarshalJSON() ([]byte, error) {
	if len(t) == 0 {
		return []byte("null"), nil
	}
	return []byte(t), nil
}

// UnmarshalJSON stores a copy of the raw value.
func (t *Tag) UnmarshalJSON(data []byte) error {
	*t = append((*t)[:0], data...)
	return nil
}

// NewTag builds a tag from any JSON-encodable value. It is mostly useful in
// tests and when constructing timelines programmatically.
func NewTag(v any) Tag {
	data, err := json.Marshal(v)
	if err != nil {
		return Tag("null")
	}
	return Tag(data)
}

// Stats summarizes a timeline. Overflow and Inverted count jobs that break
// the document's soft invariants; they are drawn anyway.
type Stats struct {
	Nodes    int
	Jobs     int
	MaxTo    float64 // latest job end
	Overflow int     // jobs with To > Duration
	Inverted int     // jobs with To < From
}

// Stats computes summary counts over all nodes and jobs.
func (tl *Timeline) Stats() Stats {
	s := Stats{Nodes: len(tl.Nodes)}
	for _, n := range tl.Nodes {
		for _, j := range n.Jobs {
			s.Jobs++
			s.MaxTo = max(s.MaxTo, j.To)
			if j.To > tl.Duration {
				s.Overflow++
			}
			if j.To < j.From {
				s.Inverted++
			}
		}
	}
	return s
}

// Validate checks a timeline built in code against the rules [Parse]
// enforces on documents: a finite, non-negative duration, finite job times
// and tags that hold valid JSON. An empty tag is allowed and shows as "".
func (tl *Timeline) Validate() error {
	if tl == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "timeline is nil")
	}
	if !finite(tl.Duration) || tl.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "duration: must be a non-negative number, got %v", tl.Duration)
	}
	for i, n := range tl.Nodes {
		for k, j := range n.Jobs {
			path := fmt.Sprintf("nodes[%d].jobs[%d]", i, k)
			if !finite(j.From) {
				return errors.New(errors.ErrCodeInvalidDocument, "%s.from: must be a number, got %v", path, j.From)
			}
			if !finite(j.To) {
				return errors.New(errors.ErrCodeInvalidDocument, "%s.to: must be a number, got %v", path, j.To)
			}
			if len(j.Tag) > 0 && !json.Valid(j.Tag) {
				return errors.New(errors.ErrCodeInvalidDocument, "%s.t: not a JSON value", path)
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Labels returns every node label in input order.
func (tl *Timeline) Labels() []string {
	labels := make([]string, len(tl.Nodes))
	for i, n := range tl.Nodes {
		labels[i] = n.Label()
	}
	return labels
}
