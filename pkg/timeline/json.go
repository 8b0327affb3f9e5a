package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/timeline/pkg/errors"
)

type object map[string]json.RawMessage

// ReadJSON decodes and validates a timeline document from r.
//
// The document must be a JSON object with a numeric "duration" and a "nodes"
// array. Every node needs string "name" and "type" fields and a "jobs"
// array; every job needs numeric "from" and "to" fields and a "t" field of
// any type. Unknown keys are ignored.
//
// Errors carry code INVALID_DOCUMENT. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Timeline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read document")
	}
	return Parse(data)
}

// Parse decodes and validates a timeline document held in memory.
func Parse(data []byte) (*Timeline, error) {
	var root object
	if err := decodeStrict(data, &root); err != nil {
		return nil, invalid(err, "decode document")
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "document must be a JSON object")
	}

	duration, err := number(root, "duration", "")
	if err != nil {
		return nil, err
	}
	if duration < 0 {
		return nil, errors.New(errors.ErrCodeInvalidDocument, "duration: must not be negative, got %v", duration)
	}

	rawNodes, err := array(root, "nodes", "")
	if err != nil {
		return nil, err
	}

	tl := &Timeline{Duration: duration, Nodes: make([]Node, 0, len(rawNodes))}
	for i, rn := range rawNodes {
		n, err := parseNode(rn, fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
		tl.Nodes = append(tl.Nodes, n)
	}
	return tl, nil
}

// ImportJSON reads the timeline document at path.
//
// A missing file is reported with code FILE_NOT_FOUND, any other open or
// read failure with IO_ERROR. Decoding errors are the same as [ReadJSON].
func ImportJSON(path string) (*Timeline, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	tl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tl, nil
}

// ReadFile reads the raw document at path without parsing it.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	return data, nil
}

func parseNode(raw json.RawMessage, path string) (Node, error) {
	var obj object
	if err := decodeStrict(raw, &obj); err != nil || obj == nil {
		return Node{}, errors.New(errors.ErrCodeInvalidDocument, "%s: must be an object", path)
	}

	name, err := str(obj, "name", path)
	if err != nil {
		return Node{}, err
	}
	typ, err := str(obj, "type", path)
	if err != nil {
		return Node{}, err
	}
	rawJobs, err := array(obj, "jobs", path)
	if err != nil {
		return Node{}, err
	}

	n := Node{Name: name, Type: typ, Jobs: make([]Job, 0, len(rawJobs))}
	for i, rj := range rawJobs {
		j, err := parseJob(rj, fmt.Sprintf("%s.jobs[%d]", path, i))
		if err != nil {
			return Node{}, err
		}
		n.Jobs = append(n.Jobs, j)
	}
	return n, nil
}

func parseJob(raw json.RawMessage, path string) (Job, error) {
	var obj object
	if err := decodeStrict(raw, &obj); err != nil || obj == nil {
		return Job{}, errors.New(errors.ErrCodeInvalidDocument, "%s: must be an object", path)
	}

	from, err := number(obj, "from", path)
	if err != nil {
		return Job{}, err
	}
	to, err := number(obj, "to", path)
	if err != nil {
		return Job{}, err
	}
	tag, ok := obj["t"]
	if !ok {
		return Job{}, missing(path, "t")
	}
	return Job{From: from, To: to, Tag: Tag(bytes.Clone(tag))}, nil
}

func number(obj object, key, path string) (float64, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, missing(path, key)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || isNull(raw) {
		return 0, wrongType(path, key, "a number", raw)
	}
	return v, nil
}

func str(obj object, key, path string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", missing(path, key)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil || isNull(raw) {
		return "", wrongType(path, key, "a string", raw)
	}
	return v, nil
}

func array(obj object, key, path string) ([]json.RawMessage, error) {
	raw, ok := obj[key]
	if !ok {
		return nil, missing(path, key)
	}
	var v []json.RawMessage
	if err := json.Unmarshal(raw, &v); err != nil || isNull(raw) {
		return nil, wrongType(path, key, "an array", raw)
	}
	return v, nil
}

// decodeStrict decodes exactly one JSON value and rejects trailing data.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func field(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func missing(path, key string) error {
	return errors.New(errors.ErrCodeInvalidDocument, "%s: missing required key", field(path, key))
}

func wrongType(path, key, want string, raw json.RawMessage) error {
	got := string(bytes.TrimSpace(raw))
	if len(got) > 32 {
		got = got[:29] + "..."
	}
	return errors.New(errors.ErrCodeInvalidDocument, "%s: must be %s, got %s", field(path, key), want, got)
}

func invalid(err error, msg string) error {
	return errors.Wrap(errors.ErrCodeInvalidDocument, err, "%s", msg)
}
