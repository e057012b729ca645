package rules

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads a rule table from YAML. The document is a mapping from marker to
// a list of [firstSuffix, secondPrefix] pairs; document order is table order.
//
//	ा:
//	  - ["", अ]
//	  - ["", आ]
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	out := make([]Rule, 0, len(doc))
	for _, item := range doc {
		marker, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("parse rules: marker %v is not a string", item.Key)
		}
		list, ok := item.Value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("parse rules: marker %q: variants must be a list", marker)
		}
		variants := make([]Variant, 0, len(list))
		for i, raw := range list {
			pair, ok := raw.([]interface{})
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("parse rules: marker %q variant %d: want [firstSuffix, secondPrefix]", marker, i)
			}
			first, ok1 := asString(pair[0])
			second, ok2 := asString(pair[1])
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("parse rules: marker %q variant %d: values must be strings", marker, i)
			}
			variants = append(variants, Variant{FirstSuffix: first, SecondPrefix: second})
		}
		out = append(out, Rule{Marker: marker, Variants: variants})
	}
	return New(out...)
}

// LoadFile reads a YAML rule table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case nil:
		// a bare `~` or empty flow entry
		return "", true
	default:
		return "", false
	}
}
