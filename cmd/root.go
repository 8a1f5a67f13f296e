package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "promptlab",
	Short: "Prompt engineering lab for comparing prompt variants against Gemini",
	Long: `promptlab runs prompt experiments: it sends several differently designed
variants of the same business question to the Gemini API, scores each response
with a heuristic evaluator (accuracy, completeness, issue flags, token
efficiency), and renders a comparison table plus chart artifacts.

When run without subcommands, it executes the default experiment (equivalent
to 'promptlab run').`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})))
		}
	},
}

// runCmd is stored so the root command can delegate to it by default.
var runCmd *cobra.Command

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "promptlab version %s\n" .Version}}`)

	// Default to the run command when invoked without arguments. Run-specific
	// flags (like --model, --endpoint) still require the explicit subcommand.
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(os.Stderr, "No subcommand specified. Running the default experiment.")
		fmt.Fprintln(os.Stderr, "For options, use: promptlab run --help")
		fmt.Fprintln(os.Stderr)
		if err := runCmd.RunE(runCmd, args); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd = newRunCmd()
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newServeCmd())

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}
