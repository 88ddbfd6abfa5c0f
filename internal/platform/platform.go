// Package platform derives the deterministic platform identifiers used to
// key status comments and advisor queries.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Tag returns the normalized lower-case "{os}-{arch}" identifier for the
// current run. Two runs on the same platform for the same change request
// resolve to the same tag, which makes it usable as the comment
// reconciliation idempotency key.
func Tag() string {
	return TagFor(runtime.GOOS, runtime.GOARCH)
}

// TagFor builds the tag from explicit OS and architecture identifiers.
func TagFor(goos, goarch string) string {
	return strings.ToLower(goos + "-" + goarch)
}

// Title returns the human-readable report heading for the current run.
func Title() string {
	return TitleFor(runtime.GOOS, runtime.GOARCH)
}

// TitleFor builds the report heading from explicit identifiers, e.g.
// ":penguin: Linux x64 Test Results".
func TitleFor(goos, goarch string) string {
	logo := ":penguin:"
	if goos == "windows" {
		logo = ":window:"
	}

	arch := goarch
	if goarch == "amd64" {
		arch = "x64"
	}

	name := strings.ToUpper(goos[:1]) + goos[1:]
	return fmt.Sprintf("%s %s %s Test Results", logo, name, arch)
}
