// Package config provides the configuration of a urltally run.
//
// Config is filled from command line flags on top of NewConfig defaults
// and, when present, the values of a YAML configuration file. Validate
// reports the first problem as one of the sentinel errors in errors.go.
package config
