package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pedronauck/reworm/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬─┐┌─┐┬ ┬┌─┐┬─┐┌┬┐
  ├┬┘├┤ ││││ │├┬┘│││
  ┴└─└─┘└┴┘└─┘┴└─┴ ┴
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var re *errors.ReworkError
		if stderrors.As(err, &re) {
			fmt.Fprintln(os.Stderr, re.Format())
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", paint("\033[31m", "Error:"), err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "reworm",
		Short: "Shared state stores outside the component tree",
		Long: `reworm runs and inspects store containers.

Stores are seeded from reworm.json. The CLI can:

  • Serve an inspector with a live WebSocket stream of broadcasts
  • Expose Prometheus metrics for store activity
  • Replay a scripted sequence of writes and print every broadcast
  • Write a starter reworm.json and explain error codes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			} else {
				errors.EnableColors()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output (also set by NO_COLOR)")

	rootCmd.AddCommand(
		initCmd(),
		serveCmd(),
		replayCmd(),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

// printBanner prints the reworm ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// paint wraps text in an ANSI color unless colors are disabled.
func paint(code, text string) string {
	if !errors.ColorsEnabled() {
		return text
	}
	return code + text + "\033[0m"
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("\033[32m", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
