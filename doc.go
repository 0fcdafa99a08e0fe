// Package main provides the entry point for the DealerDesk service.
// It runs a small web server using the Fiber framework that stores text
// templates and dealer records and renders templates by substituting dealer
// fields into placeholder tokens. Persistence is pluggable: an embedded
// snapshot file, a remote blob, or a relational database selected from the
// configuration.
package main
