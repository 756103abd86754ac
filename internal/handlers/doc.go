// Package handlers implements the HTTP endpoints of the thumbserve
// daemon: thumbnail retrieval and health probes.
package handlers
