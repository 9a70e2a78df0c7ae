// Package config handles configuration loading for the copilot dashboard.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. The package applies defaults and validates the result.
//
// # Configuration File
//
// Default location:
//
//  1. Path from COPILOT_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/copilot/config.yaml
//  3. ~/.config/copilot/config.yaml
//
// Files ending in .toml are decoded as TOML; anything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	session:
//	  secret: "${COPILOT_SESSION_SECRET}"
//
// Unset variables expand to the empty string. COPILOT_BACKEND_URL and
// COPILOT_DB_PATH override backend.base_url and database.path after parsing.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	backend:
//	  timeout: "60s"
//	chat:
//	  idle_ttl: "30m"
//
// A backend timeout of "0s" disables the client timeout.
//
// # Example
//
//	server:
//	  http_addr: "localhost:8080"
//
//	database:
//	  path: "/var/lib/copilot/copilot.db"
//
//	backend:
//	  base_url: "http://localhost:8000"
//
//	tokens:
//	  encryption_key: "${COPILOT_TOKEN_KEY}"
//
//	tailscale:
//	  enabled: false
//	  hostname: "copilot"
//
//	agents:
//	  - name: "Release Notes"
//	    tone: "Concise"
//	    sources: ["Jira", "Confluence"]
//
// # Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
