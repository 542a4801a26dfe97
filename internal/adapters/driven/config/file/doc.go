// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML configuration with SUPPORTLY_* environment overrides
//     and optional reload on file change
package file
