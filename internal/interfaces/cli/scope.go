package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pcfg.dev/cli/internal/core/profile"
)

// scopeFile is one level of a scope file:
//
//	name: org
//	profiles: base,shared
//	child:
//	  name: team
//	  profiles: team
type scopeFile struct {
	Name     string     `yaml:"name"`
	Profiles string     `yaml:"profiles"`
	Child    *scopeFile `yaml:"child"`
}

// LoadScopeFile reads a scope file and returns its innermost scope
func LoadScopeFile(path string) (*profile.Scope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scope file: %w", err)
	}
	var root scopeFile
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse scope file %s: %w", path, err)
	}

	var leaf *profile.Scope
	for s := &root; s != nil; s = s.Child {
		leaf = profile.NewScope(s.Name, s.Profiles, leaf)
	}
	return leaf, nil
}
