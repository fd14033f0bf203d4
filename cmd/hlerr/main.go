package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"hlerr/internal/run"
)

var (
	usePTY    bool
	colorMode string
	verbose   bool

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "hlerr <command> [args...]",
	Short: "Run a command with its stderr highlighted in red",
	Long: `hlerr runs a command, captures its stdout and stderr separately, and
re-renders both on the terminal with stderr highlighted in red,
preserving the interleaving of the two streams. After the command
terminates its exit status (or the signal that killed it) is reported
in blue, and hlerr exits with the command's own exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, err := run.ParseColorMode(colorMode)
		if err != nil {
			return err
		}
		// Past flag validation: failures from here on are runtime
		// errors, not usage errors.
		cmd.SilenceUsage = true
		exitCode = 1

		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}

		r := &run.Runner{
			Out:   os.Stdout,
			Err:   os.Stderr,
			PTY:   usePTY,
			Color: color,
			Log:   slog.Default(),
		}
		code, err := r.Run(args)
		if err != nil {
			return err
		}
		exitCode = code
		return nil
	},
}

func init() {
	// Flags after the command name belong to the child.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().BoolVar(&usePTY, "pty", false, "attach the command's stdout to a pseudo-terminal")
	rootCmd.Flags().StringVar(&colorMode, "color", "always", "when to emit color markers: always, auto or never")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if exitCode == 0 {
			// Usage or flag error: no child was spawned.
			exitCode = 2
		}
	}
	os.Exit(exitCode)
}
