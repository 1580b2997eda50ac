// Package config loads process-level settings for the newsqa pipeline from
// environment variables, with an optional .env file as fallback. All
// settings have working local defaults; Validate fails fast on anything the
// pipeline cannot run without.
package config
