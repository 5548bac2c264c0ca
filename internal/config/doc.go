// Package config loads gateway configuration from YAML with environment
// variable expansion, plus the legacy environment overrides for the
// anti-ban throttling knobs.
package config
