// Copyright (C) 2025 Quorumworks (jmcallister@quorumworks.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
This file bridges the build system and the runtime logic. It uses the Go
embed package to bake the risk_factors.yaml file directly into the compiled
binary, so the factor table is immutable at runtime and travels with the
executable.
*/

package enforcement

import (
	_ "embed"
)

// RiskFactors holds the raw byte content of the 'risk_factors.yaml' file.
//
// Populated at compile time via the Go 'embed' directive. Baking the YAML
// into the binary means the factor table cannot be tampered with on the
// host filesystem without recompiling the application.
//
// Usage:
//
//	// Pass these bytes directly to yaml.Unmarshal
//	err := yaml.Unmarshal(enforcement.RiskFactors, &targetStruct)
//
//go:embed risk_factors.yaml
var RiskFactors []byte
