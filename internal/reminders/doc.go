// Package reminders provides access to the reminders web service:
// listing reminder collections and their entries, and creating new
// reminders.
package reminders
