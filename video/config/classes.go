package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClassCounts maps a task name ("verb", "noun", ...) to its class count.
// Datasets ship this as externally loaded configuration; only the "verb"
// entry is consulted when the input is raw images.
type ClassCounts map[string]int

// Verb returns the verb class count and whether the table defines one
func (c ClassCounts) Verb() (int, bool) {
	n, ok := c["verb"]
	return n, ok
}

// LoadClassCounts reads a class-count table from a YAML file of the form:
//
//	verb: 8
//	noun: 300
func LoadClassCounts(path string) (ClassCounts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading class counts: %w", err)
	}

	counts := make(ClassCounts)
	if err := yaml.Unmarshal(data, &counts); err != nil {
		return nil, fmt.Errorf("parsing class counts %s: %w", path, err)
	}

	return counts, nil
}
