// Package drive provides read access to the iCloud Drive web service:
// traversing the folder tree and resolving file download URLs.
//
// Folder metadata comes from the drivews endpoint; download URLs are
// resolved through the docws endpoint.
package drive
