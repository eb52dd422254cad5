package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse applies YAML content on top of base, expanding ${VAR} references
// first. Unknown keys are reported as warnings.
func Parse(content string, base Config) (Config, []Warning, error) {
	cfg := base
	expanded := os.ExpandEnv(content)

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(expanded), &root); err != nil {
		return Config{}, nil, err
	}

	warnings := make([]Warning, 0)
	if len(root.Content) > 0 {
		doc := root.Content[0]
		if doc.Kind != yaml.MappingNode {
			return Config{}, nil, fmt.Errorf("line %d: top level must be a mapping", doc.Line)
		}
		warnings = append(warnings, unknownKeys(doc, reflect.TypeOf(Config{}), "")...)
		if err := doc.Decode(&cfg); err != nil {
			return Config{}, nil, err
		}
	}

	cfg = applyKeyEnv(cfg)
	validationWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validationWarnings...)
	return cfg, warnings, nil
}

// unknownKeys walks a mapping node against the yaml tags of t.
func unknownKeys(node *yaml.Node, t reflect.Type, prefix string) []Warning {
	fields := make(map[string]reflect.Type, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		fields[name] = f.Type
	}

	var warnings []Warning
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		ft, ok := fields[key.Value]
		if !ok {
			warnings = append(warnings, Warning{
				Line:    key.Line,
				Message: fmt.Sprintf("unknown key %q ignored", prefix+key.Value),
			})
			continue
		}
		if ft.Kind() == reflect.Struct && value.Kind == yaml.MappingNode {
			warnings = append(warnings, unknownKeys(value, ft, prefix+key.Value+".")...)
		}
	}
	return warnings
}
