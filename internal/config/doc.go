// Package config provides configuration structures and utilities for
// webcorpus. It defines the crawl, conversion, and ranking settings,
// their defaults and validation, and the optional .webcorpus YAML file
// carrying global and per-host overrides.
package config
