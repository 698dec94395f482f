package version

import "runtime/debug"

// Set at build time with
//
//	-ldflags "-X wireguard-subnets/internal/pkg/version.tag=$(git describe --tags --abbrev=0)"
var (
	tag    = "none"
	branch = "unknown"
)

type gitInfo struct {
	Commit string
	Branch string
	Tag    string
	Dirty  bool
}

// GetGitInfo returns git metadata. Commit and dirty state come from the VCS
// stamp the Go toolchain embeds in the binary.
func GetGitInfo() gitInfo {
	info := gitInfo{
		Commit: "unknown",
		Branch: branch,
		Tag:    tag,
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range build.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}
