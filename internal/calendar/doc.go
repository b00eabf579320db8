// Package calendar provides read access to the calendar web service:
// calendar collections, events within a date window, and event detail.
package calendar
