// Package logging provides a simple leveled logging interface for the
// thumbnail cache engine and its command-line surfaces.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//
// The log level is configured via the LOG_LEVEL environment variable
// (or DEBUG=1 as a shorthand for debug level).
package logging
