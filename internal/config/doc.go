// Package config holds dumpscan's configuration: defaults, CLI-populated
// options, the optional YAML configuration file, and XDG directory paths.
//
// The Config struct is populated from cobra flags and passed through the
// application via dependency injection rather than global state.
package config
