// Package config defines the YAML configuration file and its loading.
//
// Configuration is explicit: a Config is loaded once, validated, and
// passed to the components that need it. There is no global singleton.
// Every field has a default, so an empty file (or no file at all) is a
// valid configuration.
package config
