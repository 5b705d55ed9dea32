// Package config defines settings used by the leet-alarm binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Values from the YAML file are overridden by LEET_ALARM_* environment variables.
// A missing file is not an error: every field has a default.
package config
