// Package config loads, normalizes, and validates dupicheck configuration.
//
// Values come from a TOML file (explicit --config path, the user config
// directory, or a project-local dupicheck.toml) layered over repository
// defaults. Path fields are expanded to absolute paths so downstream packages
// never deal with "~" or relative locations. The store and quarantine
// locations are derived per scanned folder through StorePath and ManualDir.
package config
