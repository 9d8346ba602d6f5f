package config

import (
	"fmt"
	"slices"

	"go.yaml.in/yaml/v3"
)

// Parse parses an assistant document. Problems that still leave a usable
// config are reported as non-fatal errors; a nil config is always
// accompanied by at least one fatal error.
func Parse(data []byte) (*Config, []ValidationError) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []ValidationError{{Message: fmt.Sprintf("parsing assistant: %v", err), Fatal: true}}
	}

	cfg := &Config{ModelsByRole: make(map[Role][]Model)}

	// Empty document is a valid empty assistant.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, []ValidationError{{Message: "expected mapping at top level", Fatal: true}}
	}

	var errs []ValidationError

	for i := 0; i < len(root.Content)-1; i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		switch keyNode.Value {
		case "name":
			cfg.Name = valNode.Value
		case "version":
			cfg.Version = valNode.Value
		case "models":
			errs = append(errs, parseModels(valNode, cfg)...)
		case "rules":
			var rules []string
			if err := valNode.Decode(&rules); err != nil {
				errs = append(errs, ValidationError{Path: "rules", Message: err.Error()})
				continue
			}
			cfg.Rules = rules
		case "settings":
			var settings map[string]any
			if err := valNode.Decode(&settings); err != nil {
				errs = append(errs, ValidationError{Path: "settings", Message: err.Error()})
				continue
			}
			cfg.Settings = settings
		}
	}

	return cfg, errs
}

// parseModels decodes the models sequence, skipping entries that cannot be
// used and dropping unknown roles.
func parseModels(node *yaml.Node, cfg *Config) []ValidationError {
	if node.Kind != yaml.SequenceNode {
		return []ValidationError{{Path: "models", Message: "expected a list"}}
	}

	var errs []ValidationError
	for i, item := range node.Content {
		path := fmt.Sprintf("models[%d]", i)

		var m Model
		if err := item.Decode(&m); err != nil {
			errs = append(errs, ValidationError{Path: path, Message: err.Error()})
			continue
		}
		if m.Title == "" {
			errs = append(errs, ValidationError{Path: path, Message: "model name is required"})
			continue
		}
		if m.Provider == "" {
			errs = append(errs, ValidationError{Path: path, Message: fmt.Sprintf("model %q has no provider", m.Title)})
			continue
		}

		roles := m.Roles[:0:0]
		for _, r := range m.Roles {
			if !slices.Contains(AllRoles, r) {
				errs = append(errs, ValidationError{Path: path + ".roles", Message: fmt.Sprintf("unknown role %q", r)})
				continue
			}
			roles = append(roles, r)
		}
		if len(m.Roles) > 0 && len(roles) == 0 {
			// Every declared role was invalid; the model is unreachable.
			continue
		}
		m.Roles = roles

		cfg.AddModel(m)
	}
	return errs
}
