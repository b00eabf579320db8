// Package account provides access to the account web service: registered
// hardware devices, family membership, and storage usage.
package account
