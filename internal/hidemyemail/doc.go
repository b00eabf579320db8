// Package hidemyemail provides access to the Hide My Email alias service:
// listing existing aliases, generating a new address, and reserving it
// with a label.
package hidemyemail
