package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦ ╦┌─┐┌─┐┬  ┬┌─┐
  ║║║├┤ ├─┤└┐┌┘├┤
  ╚╩╝└─┘┴ ┴ └┘ └─┘
`

// colorOutput is decided once from stdout.
var colorOutput = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func main() {
	if !colorOutput {
		errors.DisableColors()
	}

	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		var we *errors.WeaveError
		if stderrors.As(err, &we) {
			fmt.Fprintln(os.Stderr, we.Format())
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", paint("31", "Error:"), err)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weave",
		Short: "Inspect and serve reconciled UI trees",
		Long: `weave reconciles declared UI trees against a live platform tree.

Commands:

  • diff   show the patches and mutations between two declared trees
  • serve  run a live tree with a devtools mutation stream and metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		diffCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

func paint(code, text string) string {
	if !colorOutput {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}
