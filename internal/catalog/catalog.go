// Package catalog owns everything the user reads: message templates,
// rendered document views and inline keyboards. Conversation and handler
// code deals in symbolic keys only.
package catalog

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var messageFiles embed.FS

// Catalog resolves symbolic reply keys to user-facing message text.
type Catalog struct {
	messages map[string]string
}

// New loads the embedded message catalog.
func New() (*Catalog, error) {
	data, err := messageFiles.ReadFile("messages.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read messages.yaml: %w", err)
	}

	var messages map[string]string
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages.yaml: %w", err)
	}

	return &Catalog{messages: messages}, nil
}

// Render resolves a key and substitutes {placeholder} tokens from data.
// An unknown key renders as the key itself so a missing entry shows up in
// chat instead of vanishing silently.
func (c *Catalog) Render(key string, data map[string]string) string {
	text, ok := c.messages[key]
	if !ok {
		return key
	}
	for name, value := range data {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}

// Has reports whether the catalog defines the given key.
func (c *Catalog) Has(key string) bool {
	_, ok := c.messages[key]
	return ok
}
