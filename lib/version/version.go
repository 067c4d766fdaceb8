package version

import "regexp"

// Version is stamped at build time with -ldflags "-X".
var Version = "v0.1.0-HEAD"

var semver = regexp.MustCompile(`[0-9]+\.[0-9]+\.[0-9]+`)

// OnlyNumbers strips any prefix and suffix around the semver triple of Version.
func OnlyNumbers() string {
	return semver.FindString(Version)
}
