// Package version reports the version of the build.
package version

// Version is set at link time for release builds:
//
//	go build -ldflags "-X oss.terrastruct.com/m2/lib/version.Version=v0.1.0"
var Version = "v0.1.0-HEAD"
