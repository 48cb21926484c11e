// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package risk_engine

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RiskFactorFile is the shape of the embedded risk_factors.yaml.
type RiskFactorFile struct {
	Factors []RiskFactor `yaml:"factors"`
}

// RiskFactor is one keyword/weight pair from the factor table. The factor
// matches when Name appears as a substring of the lowercased assessment
// text.
type RiskFactor struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// UnmarshalYAML validates factor entries as they are decoded: names must
// be non-empty and weights must lie in (0, 100].
func (f *RiskFactor) UnmarshalYAML(value *yaml.Node) error {
	type rawFactor struct {
		Name   string  `yaml:"name"`
		Weight float64 `yaml:"weight"`
	}
	var raw rawFactor
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Name == "" {
		return fmt.Errorf("risk factor with empty name")
	}
	if raw.Weight <= 0 || raw.Weight > 100 {
		return fmt.Errorf("risk factor %q has weight %v outside (0, 100]", raw.Name, raw.Weight)
	}
	f.Name = raw.Name
	f.Weight = raw.Weight
	return nil
}
