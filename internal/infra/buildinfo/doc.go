// Package buildinfo reports the version of the tracklink binaries.
//
// Release builds inject the values through ldflags:
//
//	go build -ldflags "-X github.com/yndnr/tracklink-go/internal/infra/buildinfo.Version=v1.2.0"
//
// Development builds fall back to the VCS stamp embedded by the toolchain.
package buildinfo
