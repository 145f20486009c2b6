// Package playbook serves canned markdown answers for the platform's
// evergreen questions. It is the offline fallback when no LLM backend
// is reachable, and it exists exactly once instead of being copied
// into every script that needs it.
package playbook

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Entry maps trigger keywords to a canned answer.
type Entry struct {
	Topic    string   `yaml:"topic"`
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
}

// Playbook is an ordered keyword-dispatch table. Earlier entries win.
type Playbook struct {
	entries []Entry
}

// Default returns the built-in table.
func Default() (*Playbook, error) {
	return Parse(defaultYAML)
}

// Load reads a table from a YAML file.
func Load(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading playbook %q: %w", path, err)
	}
	return Parse(data)
}

// Parse validates and builds a playbook from YAML.
func Parse(data []byte) (*Playbook, error) {
	var doc struct {
		Entries []Entry `yaml:"entries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing playbook: %w", err)
	}
	if len(doc.Entries) == 0 {
		return nil, fmt.Errorf("playbook contains no entries")
	}
	for i, e := range doc.Entries {
		if len(e.Keywords) == 0 {
			return nil, fmt.Errorf("playbook entry %d (%q) has no keywords", i, e.Topic)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return nil, fmt.Errorf("playbook entry %d (%q) has no answer", i, e.Topic)
		}
	}
	return &Playbook{entries: doc.Entries}, nil
}

// Len reports the number of entries.
func (p *Playbook) Len() int {
	return len(p.entries)
}

// Match returns the first entry whose any keyword appears in the
// question, case-insensitively.
func (p *Playbook) Match(question string) (Entry, bool) {
	q := strings.ToLower(question)
	for _, e := range p.entries {
		for _, kw := range e.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" && strings.Contains(q, kw) {
				return e, true
			}
		}
	}
	return Entry{}, false
}
