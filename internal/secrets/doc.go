// Package secrets stores account passwords in per-account files under
// the user's configuration directory, as a stand-in for a platform
// keyring. Files are created with mode 0600 and the directory with 0700.
package secrets
