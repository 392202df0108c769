// Package config loads a project's optional codestory.yaml: source-group
// globs and excludes, the resolver confidence floor, and search index
// caps. An absent file synthesizes a default single-root configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/codestory/codestory/internal/plan"
	"github.com/codestory/codestory/internal/resolver"
)

// FileName is the project-level config file read from the project root.
// ProjectFileName is an alternative JSON project definition consulted
// when no codestory.yaml exists; it carries source groups only.
const (
	FileName        = "codestory.yaml"
	ProjectFileName = "codestory_project.json"
)

// sourceGroupYAML is the on-disk representation of a plan.SourceGroup.
type sourceGroupYAML struct {
	Name     string   `yaml:"name"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// Config is one project's resolved configuration.
type Config struct {
	SourceGroups   []plan.SourceGroup `yaml:"-"`
	MinConfidence  float64            `yaml:"-"`
	FuzzySearchCap int                `yaml:"-"`
	FullTextCap    int                `yaml:"-"`
}

type fileShape struct {
	SourceGroups []sourceGroupYAML `yaml:"source_groups"`
	Resolver     struct {
		MinConfidence float64 `yaml:"min_confidence"`
	} `yaml:"resolver"`
	Search struct {
		FuzzyCap    int `yaml:"fuzzy_cap"`
		FullTextCap int `yaml:"fulltext_cap"`
	} `yaml:"search"`
}

// Default returns the configuration synthesized when no codestory.yaml is
// present: a single root source group matching every file under root
// (the planner's own defaultIgnoreDirs still apply), the resolver's
// default confidence floor, and a fuzzy-search cap of 20.
func Default() *Config {
	return &Config{
		SourceGroups: []plan.SourceGroup{
			{Name: "root", Includes: []string{"**/*"}},
		},
		MinConfidence:  resolver.MinConfidenceDefault,
		FuzzySearchCap: 20,
		FullTextCap:    50,
	}
}

// Load reads <root>/codestory.yaml if present, merging it over Default().
// Without one, <root>/codestory_project.json may still define source
// groups. Neither file existing is not an error: a default single-root
// group is synthesized.
func Load(root string) (*Config, error) {
	cfg := Default()
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return loadProjectFile(root, cfg)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fc fileShape
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if len(fc.SourceGroups) > 0 {
		cfg.SourceGroups = make([]plan.SourceGroup, len(fc.SourceGroups))
		for i, g := range fc.SourceGroups {
			cfg.SourceGroups[i] = plan.SourceGroup{Name: g.Name, Includes: g.Includes, Excludes: g.Excludes}
		}
	}
	if fc.Resolver.MinConfidence > 0 {
		cfg.MinConfidence = fc.Resolver.MinConfidence
	}
	if fc.Search.FuzzyCap > 0 {
		cfg.FuzzySearchCap = fc.Search.FuzzyCap
	}
	if fc.Search.FullTextCap > 0 {
		cfg.FullTextCap = fc.Search.FullTextCap
	}
	return cfg, nil
}

// loadProjectFile merges <root>/codestory_project.json over cfg when it
// exists. The project file only carries source groups; resolver and
// search tuning stay at their defaults.
func loadProjectFile(root string, cfg *Config) (*Config, error) {
	path := filepath.Join(root, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var pf struct {
		SourceGroups []sourceGroupJSON `json:"source_groups"`
	}
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(pf.SourceGroups) > 0 {
		cfg.SourceGroups = make([]plan.SourceGroup, len(pf.SourceGroups))
		for i, g := range pf.SourceGroups {
			cfg.SourceGroups[i] = plan.SourceGroup{Name: g.Name, Includes: g.Includes, Excludes: g.Excludes}
		}
	}
	return cfg, nil
}

type sourceGroupJSON struct {
	Name     string   `json:"name"`
	Includes []string `json:"includes"`
	Excludes []string `json:"excludes"`
}
