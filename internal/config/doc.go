// Package config provides configuration loading, merging, and path management for projboard.
//
// # Configuration Loading
//
// Load merges configuration from several sources, later sources overriding earlier ones:
//
//  1. Built-in defaults
//  2. Global config (~/.config/projboard/projboard.json or projboard.jsonc, XDG compatible)
//  3. Project config in the given directory (projboard.json, projboard.jsonc, projboard.yaml
//     or projboard.yml)
//  4. PROJBOARD_CONFIG file
//  5. Environment variables (PROJBOARD_PORT, PROJBOARD_HOSTNAME, PROJBOARD_CORS,
//     PROJBOARD_LOG_LEVEL, PROJBOARD_LOG_PRETTY, PROJBOARD_LOG_FILE)
//
// A missing file is skipped. A file that exists but cannot be parsed is an error.
//
// # Supported Formats
//
//   - projboard.json: standard JSON
//   - projboard.jsonc: JSON with comments, processed using tidwall/jsonc
//   - projboard.yaml / projboard.yml: YAML, parsed with gopkg.in/yaml.v3
//
// JSON and JSONC files support {env:VAR_NAME} placeholders.
//
// Example:
//
//	{
//	  // listen on all interfaces
//	  "server": {"port": 9000, "hostname": "0.0.0.0", "readTimeout": "10s"},
//	  "log": {"level": "debug", "pretty": true}
//	}
//
// # Paths
//
// GetPaths returns the XDG directories used by projboard; log files go under the state
// directory.
package config
