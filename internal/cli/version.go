package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/loclink/internal/buildinfo"
)

const defaultModulePath = "github.com/aidanlsb/loclink"

type versionInfo struct {
	Version    string `json:"version"`
	ModulePath string `json:"module_path"`
	Commit     string `json:"commit,omitempty"`
	CommitTime string `json:"commit_time,omitempty"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`

	// SearchTool is the resolved filesystem search tool and its version.
	SearchTool string `json:"search_tool,omitempty"`
}

var readBuildInfo = debug.ReadBuildInfo

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show loclink version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := currentVersionInfo()
		info.SearchTool = searchToolVersion(getConfig().SearchTool())
		if isJSONOutput() {
			outputSuccess(info, nil)
			return nil
		}
		printVersion(os.Stdout, info)
		return nil
	},
}

func printVersion(w io.Writer, info versionInfo) {
	fmt.Fprintf(w, "loclink %s\n", info.Version)
	fmt.Fprintf(w, "module: %s\n", info.ModulePath)
	if info.Commit != "" {
		fmt.Fprintf(w, "commit: %s\n", info.Commit)
	}
	if info.CommitTime != "" {
		fmt.Fprintf(w, "commit_time: %s\n", info.CommitTime)
	}
	fmt.Fprintf(w, "go: %s\n", info.GoVersion)
	fmt.Fprintf(w, "platform: %s/%s\n", info.GOOS, info.GOARCH)
	fmt.Fprintf(w, "modified: %t\n", info.Modified)
	if info.SearchTool != "" {
		fmt.Fprintf(w, "search tool: %s\n", info.SearchTool)
	} else {
		fmt.Fprintln(w, "search tool: not found")
	}
}

// searchToolVersion returns "path (first line of --version)", the path alone
// when the tool prints no version, or "" when it is not installed.
var searchToolVersion = func(tool string) string {
	path, err := exec.LookPath(tool)
	if err != nil {
		return ""
	}
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return path
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if first == "" {
		return path
	}
	return path + " (" + first + ")"
}

// currentVersionInfo reads the embedded build info. Values injected with
// ldflags fill whatever the toolchain did not record.
func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:    "devel",
		ModulePath: defaultModulePath,
		GoVersion:  runtime.Version(),
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}

	if bi, ok := readBuildInfo(); ok && bi != nil {
		settings := make(map[string]string, len(bi.Settings))
		for _, s := range bi.Settings {
			settings[s.Key] = s.Value
		}

		if bi.Main.Path != "" {
			info.ModulePath = bi.Main.Path
		}
		info.Version = normalizeVersion(bi.Main.Version)
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		if v := settings["GOOS"]; v != "" {
			info.GOOS = v
		}
		if v := settings["GOARCH"]; v != "" {
			info.GOARCH = v
		}
		info.Commit = settings["vcs.revision"]
		info.CommitTime = settings["vcs.time"]
		info.Modified = strings.EqualFold(settings["vcs.modified"], "true")
	}

	if info.Version == "devel" && buildinfo.Version != "" {
		info.Version = normalizeVersion(buildinfo.Version)
	}
	if info.Commit == "" {
		info.Commit = buildinfo.Commit
	}
	if info.CommitTime == "" {
		info.CommitTime = buildinfo.Date
	}
	return info
}

func normalizeVersion(version string) string {
	if version == "" || version == "(devel)" {
		return "devel"
	}
	return version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
