// Package version carries the build version, set with
// -ldflags "-X taxassign/internal/version.Version=v1.2.3".
package version

// Version of the binary.
var Version = "dev"
