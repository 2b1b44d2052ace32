// Package buildinfo holds release metadata set at link time, e.g.
//
//	go build -ldflags "-X github.com/aidanlsb/loclink/internal/buildinfo.Version=v0.3.0"
//
// All values are empty in development builds.
package buildinfo

var (
	Version = ""
	Commit  = ""
	Date    = ""
)
