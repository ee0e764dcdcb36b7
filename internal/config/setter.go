package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SetValue validates value for key and writes it into the YAML config at
// path, preserving other keys and comments. The file is created if needed.
func SetValue(path, key, value string) (ParsedValue, error) {
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return ParsedValue{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return ParsedValue{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := ValidateYAMLSyntax(data, path); err != nil {
		return ParsedValue{}, err
	}

	updated, err := setTopLevelValue(data, key, parsed.Parsed)
	if err != nil {
		return ParsedValue{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ParsedValue{}, fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, updated, 0o644); err != nil {
		return ParsedValue{}, fmt.Errorf("writing config %s: %w", path, err)
	}
	return parsed, nil
}

// setTopLevelValue sets key to value in a YAML mapping document.
func setTopLevelValue(data []byte, key string, value interface{}) ([]byte, error) {
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config root must be a mapping")
	}

	var valueNode yaml.Node
	if err := valueNode.Encode(value); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", key, err)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == key {
			root.Content[i+1] = &valueNode
			return yaml.Marshal(&doc)
		}
	}

	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&valueNode,
	)
	return yaml.Marshal(&doc)
}
