// Package contacts provides read access to the contacts web service.
package contacts
