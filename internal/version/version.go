// Package version exposes build metadata injected at link time:
//
//	go build -ldflags "-X .../internal/version.Version=1.2.0 -X .../internal/version.GitRef=abc123"
package version

var (
	Version = "0.0.0-dev"
	GitRef  = "unknown"
)

type Info struct {
	Version string `json:"version"`
	GitRef  string `json:"git_ref"`
}

func Get() Info {
	return Info{Version: Version, GitRef: GitRef}
}
