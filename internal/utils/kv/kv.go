package kv

import (
	"fmt"
	"io/fs"
	"maps"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var keyRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// ParseSpecs parses `key=value` specs into collected data. Values are decoded
// as YAML scalars or flow collections, so `count=3` is an int, `ok=true` a bool
// and `zones=[hood, roof]` a list. Later specs override earlier ones.
func ParseSpecs(specs []string) (map[string]any, error) {
	data := make(map[string]any, len(specs))

	for _, spec := range specs {
		if spec == "" {
			return nil, fmt.Errorf("data spec cannot be empty")
		}

		key, raw, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("data spec %q must be key=value", spec)
		}
		if !keyRegexp.MatchString(key) {
			return nil, fmt.Errorf("invalid data key %q", key)
		}

		value, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for data key %q: %w", key, err)
		}
		data[key] = value
	}

	return data, nil
}

func decodeValue(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}

	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if _, isMap := v.(map[string]any); isMap {
		// Values like "a: b" are plain strings for the user.
		return raw, nil
	}
	return v, nil
}

// LoadFile reads a YAML mapping with collected data.
func LoadFile(fsys fs.FS, path string) (map[string]any, error) {
	raw, err := fs.ReadFile(fsys, strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("could not read data file: %w", err)
	}

	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("could not parse data file: %w", err)
	}

	return data, nil
}

// Merge returns a new map with base overridden by override.
func Merge(base, override map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(override))
	maps.Copy(merged, base)
	maps.Copy(merged, override)
	return merged
}
