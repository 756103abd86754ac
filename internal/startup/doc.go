// Package startup handles configuration loading, build information, and
// the structured startup/shutdown log output shared by the CLI and the
// thumbserve daemon.
package startup
