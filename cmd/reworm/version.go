package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// currentBuild reports the ldflags values, falling back to the module
// version and VCS stamp embedded by `go install`.
func currentBuild() buildInfo {
	b := buildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		b.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		}
	}
	return b
}

func versionCmd() *cobra.Command {
	var (
		short  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the reworm version with its commit, build date and platform.

Examples:
  reworm version
  reworm version --short
  reworm version --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersion(cmd.OutOrStdout(), currentBuild(), short, asJSON)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")

	return cmd
}

func printVersion(w io.Writer, b buildInfo, short, asJSON bool) error {
	switch {
	case short:
		fmt.Fprintln(w, b.Version)
		return nil
	case asJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	printBanner(w)
	fmt.Fprintln(w)
	for _, row := range [][2]string{
		{"Version", b.Version},
		{"Commit", b.Commit},
		{"Built", b.Date},
		{"Go", b.GoVersion},
		{"Platform", b.Platform},
	} {
		info(w, "%-9s %s", row[0]+":", row[1])
	}
	fmt.Fprintln(w)
	return nil
}
