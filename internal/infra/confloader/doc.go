// Package confloader loads server configuration with koanf.
//
// Sources merge in priority order: defaults, then the YAML file, then
// SCAND_-prefixed environment variables, then explicit overrides.
package confloader
