// Command thumbserve runs an HTTP daemon that serves thumbnails from
// the shared cache, generating them on demand.
package main
