// Package config defines runtime configuration for pagemine, populated
// from CLI flags and the optional .pagemine YAML file.
package config
