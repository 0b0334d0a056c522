// Package validation checks and normalizes external payloads at the boundary
// where collaborator data enters the engine. Tag sets arrive as JSON array
// columns; everything past this package works with typed, normalized slices.
package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const tagArraySchema = `{
	"type": "array",
	"items": {
		"type": "string",
		"minLength": 1,
		"maxLength": 64
	},
	"maxItems": 64
}`

var tagSchema = gojsonschema.NewSchemaLoader()

var compiledTagSchema *gojsonschema.Schema

func init() {
	var err error
	compiledTagSchema, err = tagSchema.Compile(gojsonschema.NewStringLoader(tagArraySchema))
	if err != nil {
		panic(fmt.Sprintf("invalid tag array schema: %v", err))
	}
}

// DecodeTagArray validates a JSON array column payload and returns the
// normalized tag set. A nil or empty payload is an empty set, not an error.
func DecodeTagArray(payload []byte) ([]string, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	result, err := compiledTagSchema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("tag payload is not valid JSON: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("tag payload failed schema validation: %s", strings.Join(msgs, "; "))
	}

	var tags []string
	if err := json.Unmarshal(payload, &tags); err != nil {
		return nil, fmt.Errorf("decode tag payload: %w", err)
	}

	return NormalizeTags(tags), nil
}

// NormalizeTags lowercases, trims, de-duplicates and sorts a tag set.
// Sorting keeps fingerprints and Jaccard inputs stable across call sites.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
