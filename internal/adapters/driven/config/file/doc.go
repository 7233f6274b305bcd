// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with environment overrides
//
// LoadEnv reads .env files into the process environment before the store is
// opened, so both feed the same override mechanism.
package file
