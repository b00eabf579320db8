// Package config loads and saves the optional icloudctl configuration
// file, a TOML document with the default account and client settings.
package config
