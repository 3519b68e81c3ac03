package capabilities

import "gopkg.in/yaml.v3"

// ModelCapabilities describes one chat model offered by a provider
type ModelCapabilities struct {
	// Model identifier (set during YAML unmarshaling)
	ID string `yaml:"-" json:"key"`

	DisplayName string `yaml:"display_name" json:"displayName"`
	Description string `yaml:"description" json:"description,omitempty"`

	// Limits
	ContextWindow int `yaml:"context_window" json:"contextWindow"`
	MaxOutput     int `yaml:"max_output" json:"maxOutput"`
}

// ProviderCapabilities represents all models for a provider
type ProviderCapabilities struct {
	Provider    string `yaml:"provider" json:"id"`
	DisplayName string `yaml:"display_name" json:"name"`
	// RequiresKey is false for providers that run without credentials
	RequiresKey bool                `yaml:"requires_key" json:"-"`
	Models      []ModelCapabilities `yaml:"-" json:"chatModels"` // Ordered slice, populated by custom unmarshaler
}

// UnmarshalYAML preserves model order from the YAML file
func (p *ProviderCapabilities) UnmarshalYAML(node *yaml.Node) error {
	type header struct {
		Provider    string                       `yaml:"provider"`
		DisplayName string                       `yaml:"display_name"`
		RequiresKey bool                         `yaml:"requires_key"`
		Models      map[string]ModelCapabilities `yaml:"models"`
	}
	var h header
	if err := node.Decode(&h); err != nil {
		return err
	}
	p.Provider = h.Provider
	p.DisplayName = h.DisplayName
	p.RequiresKey = h.RequiresKey

	// node.Content alternates key, value
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != "models" {
			continue
		}
		modelsNode := node.Content[i+1]
		for j := 0; j+1 < len(modelsNode.Content); j += 2 {
			modelID := modelsNode.Content[j].Value
			if model, ok := h.Models[modelID]; ok {
				model.ID = modelID
				p.Models = append(p.Models, model)
			}
		}
		break
	}

	return nil
}
