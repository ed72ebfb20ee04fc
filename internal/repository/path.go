package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var ErrInvalidPath = errors.New("invalid store path")

// CleanPath validates a store path: non-empty "/"-separated segments without
// leading or trailing slashes.
func CleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
		}
	}
	return p, nil
}

// Join builds a store path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// likePrefix escapes a path prefix for a LIKE ... ESCAPE '\' clause.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "/%"
}

// Decode converts a generic store value into out (a pointer to a struct or
// map) using mapstructure tags. A nil value leaves out untouched and reports
// false.
func Decode(value any, out any) (bool, error) {
	if value == nil {
		return false, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return false, err
	}
	if err := dec.Decode(value); err != nil {
		return false, fmt.Errorf("decode store value: %w", err)
	}
	return true, nil
}

// mergeFields applies fields onto the existing JSON value. Non-object
// existing values are replaced.
func mergeFields(existing []byte, fields map[string]any) ([]byte, error) {
	obj := map[string]any{}
	if len(existing) > 0 {
		var cur any
		if err := json.Unmarshal(existing, &cur); err != nil {
			return nil, fmt.Errorf("unmarshal existing value: %w", err)
		}
		if m, ok := cur.(map[string]any); ok {
			obj = m
		}
	}
	for k, v := range fields {
		if v == nil {
			delete(obj, k)
			continue
		}
		obj[k] = v
	}
	return json.Marshal(obj)
}

func decodeJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("unmarshal stored value: %w", err)
	}
	return v, nil
}
