// Package config provides configuration management for bulk-downloader.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Overrides from .env files and BULKDL_* environment variables
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// 3 retries, 32 concurrent transfers, no rate limit
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// # Environment
//
//	BULKDL_CONCURRENCY=8 BULKDL_RATE_LIMIT=2MB bulk-dl ./lists ./out
//
// Settings are built once at startup (defaults, then file, then environment,
// then command line flags) and passed by pointer; nothing mutates them afterwards.
package config
