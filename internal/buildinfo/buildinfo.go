// Package buildinfo carries build metadata stamped in with
//
//	-ldflags "-X github.com/dmitrijs2005/passvault/internal/buildinfo.version=... -X ...buildDate=..."
package buildinfo

import (
	"cmp"
	"fmt"
	"io"
)

var (
	version   string
	buildDate string
)

// Version returns the build version, or "N/A" if it was not set.
func Version() string {
	return cmp.Or(version, "N/A")
}

// Date returns the build date, or "N/A" if it was not set.
func Date() string {
	return cmp.Or(buildDate, "N/A")
}

// PrintBuildData writes the version and date lines to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version())
	fmt.Fprintf(w, "Build date: %s\n", Date())
}
