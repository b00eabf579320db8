// Package server provides the HTTP endpoints of the watch daemon: a
// Prometheus scrape target and a liveness probe.
package server
