package auth

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// policyFile is the YAML layout accepted by LoadPolicy:
//
//	rules:
//	  - path: /api/auth/**
//	    access: public
//	  - methods: [POST, PUT, DELETE]
//	    path: /api/rooms/**
//	    access: role
//	    role: ADMIN
//	  - path: /**
//	    access: authenticated
type policyFile struct {
	Rules []struct {
		Methods []string `yaml:"methods"`
		Path    string   `yaml:"path"`
		Access  string   `yaml:"access"`
		Role    string   `yaml:"role"`
	} `yaml:"rules"`
}

// LoadPolicy parses a YAML rule table.
func LoadPolicy(r io.Reader) (*Policy, error) {
	var f policyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}

	rules := make([]Rule, 0, len(f.Rules))
	for i, fr := range f.Rules {
		rule := Rule{Methods: fr.Methods, Pattern: fr.Path}
		switch strings.ToLower(fr.Access) {
		case "public":
			rule.Requirement = Public
		case "authenticated", "":
			rule.Requirement = AuthenticatedAny
		case "role":
			role, err := ParseRole(fr.Role)
			if err != nil {
				return nil, fmt.Errorf("rule %d: %w", i, err)
			}
			rule.Requirement = RequireRole
			rule.Role = role
		default:
			return nil, fmt.Errorf("rule %d: unknown access %q", i, fr.Access)
		}
		rules = append(rules, rule)
	}
	return NewPolicy(rules)
}

// LoadPolicyFile reads the rule table at path, or returns the default policy
// when path is empty.
func LoadPolicyFile(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open policy file: %w", err)
	}
	defer f.Close()
	return LoadPolicy(f)
}
