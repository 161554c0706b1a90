// Package config loads runtime configuration for vaultctl.
//
// Sources & precedence
//
//  1. Built-in defaults (see Defaults).
//  2. Optional YAML file: vaultctl.yaml in the working directory or the user
//     config directory, or the file given with --config.
//  3. Environment variables prefixed with VAULTCTL_ (e.g. VAULTCTL_SERVER).
//  4. Command-line flags bound from cobra, which override earlier values.
//
// # YAML schema
//
//	server: 127.0.0.1:50051
//	timeout: 10s
//	state: ~/.config/vaultctl/vaultctl.db
package config
