// Package photos provides read access to the photo library through the
// CloudKit database web service: smart albums, their asset counts, and
// asset listings.
//
// The client verifies on construction that the backend has finished
// indexing the library; until then every query would return partial
// results.
package photos
