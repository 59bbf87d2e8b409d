// Package version exposes build version information for docpipe.
//
// Version and build metadata are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/pipedocs/docpipe/version.Version=1.0.0"
package version
