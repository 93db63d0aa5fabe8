package handlers

import (
	"net/http"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/lightspeedtech/lightspeed/internal/appid"
)

// Build metadata, injected from main via SetVersionInfo.
var (
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"
)

func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// VersionResponse is the /version body. Runtime load figures are left out;
// the endpoint is public.
type VersionResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	Go        string `json:"go_version"`
	Platform  string `json:"platform"`
	Gofulmen  string `json:"gofulmen"`
	Crucible  string `json:"crucible"`
}

func currentVersion() VersionResponse {
	libs := crucible.GetVersion()
	return VersionResponse{
		Name:      appid.Get().BinaryName,
		Version:   AppVersion,
		Commit:    AppCommit,
		BuildDate: AppBuildDate,
		Go:        runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Gofulmen:  libs.Gofulmen,
		Crucible:  libs.Crucible,
	}
}

func VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentVersion())
}
