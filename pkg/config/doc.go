// Package config loads and validates configuration for the before/after scraper.
//
// Values are layered, highest priority first:
//
//  1. command line flags (passed to Load as a map)
//  2. BEFOREAFTER_* environment variables
//  3. a .env file in the working directory or the XDG config directory
//  4. a YAML file (--config, ./beforeafter.yaml, or $XDG_CONFIG_HOME/beforeafter/config.yaml)
//  5. DefaultConfig
//
// Usage:
//
//	cfg, err := config.Load("", map[string]interface{}{
//	    "output":   "./out",
//	    "renderer": "static",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Durations in YAML use Go syntax ("500ms", "15s").
package config
