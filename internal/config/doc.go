// Package config manages user-level settings stored at ~/.pawx/config.yaml.
// Values can be overridden with PAWX_* environment variables; the keys in
// use are vendor-dir, sources and log-level.
package config
