// Package cmd implements the command-line interface for icloudctl.
//
// This package provides the following commands:
//   - devices: Locate and interact with devices via Find My iPhone
//   - account: Show account devices, family members, and storage usage
//   - calendar: List calendars and events
//   - contacts: List the account's contacts
//   - reminders: List and create reminders
//   - drive: Browse iCloud Drive and resolve download URLs
//   - photos: Browse the photo library's smart albums
//   - hidemyemail: Manage Hide My Email aliases
//   - auth: Manage stored credentials and session state
//   - watch: Poll device locations and expose Prometheus metrics
//   - version: Display version information
//
// Credentials are resolved from flags, the config file, environment
// variables, and the local credential store, in that order. Session
// cookies are persisted per account, so second-factor verification is
// only needed once per device.
package cmd
