package jobdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/system-prompt-generator/internal/common"
)

// Document is one decoded upload. Numbers are kept as json.Number so ids
// render exactly as they were written.
type Document map[string]any

const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object"
}`

var compiledSchema = jsonschema.MustCompileString("document.json", documentSchema)

// LoadDocument decodes a JSON object. Any syntax error, trailing data or a
// non-object top level is reported as ErrMalformedJSON.
func LoadDocument(r io.Reader, name string) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, malformed(name, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, malformed(name, errors.New("unexpected data after top-level value"))
	}
	if err := compiledSchema.Validate(v); err != nil {
		return nil, malformed(name, err)
	}
	return Document(v.(map[string]any)), nil
}

func malformed(name string, cause error) error {
	return common.NewAppError("INVALID_JSON", fmt.Sprintf("Invalid JSON in %s", name),
		fmt.Errorf("%w: %v", common.ErrMalformedJSON, cause))
}

// Lookup walks nested objects by key. ok is false when any segment is absent,
// an intermediate value is not an object, or the leaf is null.
func (d Document) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(d)
	for _, seg := range path {
		m, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}
		next, exists := m[seg]
		if !exists {
			return nil, false
		}
		cur = next
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Scalar renders a JSON value as text without validating its type.
func Scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

// DisplayPath formats a key path the way it is reported in errors.
func DisplayPath(path []string) string {
	parts := make([]string, len(path))
	for i, seg := range path {
		if strings.ContainsAny(seg, " .()?") {
			parts[i] = `"` + seg + `"`
		} else {
			parts[i] = seg
		}
	}
	return strings.Join(parts, ".")
}
