// Package middleware provides HTTP request logging and Prometheus
// metrics middleware for the thumbserve daemon.
package middleware
