// Package config defines the updater settings and provides helpers to
// resolve them from defaults, an optional YAML file, and flag overrides.
package config
