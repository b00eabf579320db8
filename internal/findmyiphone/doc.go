// Package findmyiphone provides access to the Find My iPhone web service:
// listing registered devices with their last known location, playing an
// alert sound, displaying a message, and enabling lost mode.
//
// The client refreshes the device list on construction, mirroring the web
// client, and keeps the last refresh in memory until Refresh is called
// again.
package findmyiphone
