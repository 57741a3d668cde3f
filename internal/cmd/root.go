package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"pushfile/pkg/config"
)

var (
	envFile   string
	logLevel  string
	logFormat string
	dryRun    bool
)

// environment holds the process-level collaborators commands read from
type environment struct {
	lookup config.LookupFunc
	fs     afero.Fs
}

var env = environment{
	lookup: config.EnvLookup(),
	fs:     afero.NewOsFs(),
}

var rootCmd = &cobra.Command{
	Use:   "pushfile",
	Short: "Push a single file to a GitHub repository branch",
	Long: `pushfile keeps one file of a GitHub repository in sync with the workspace copy.

It is meant to run as a CI step. Inputs are read from the environment the way
GitHub Actions passes them:

  INPUT_GITHUB-TOKEN     token with contents write access
  INPUT_BRANCH           target branch (empty: repository default branch)
  INPUT_FILE-PATH        file path, identical locally and in the repository
  INPUT_COMMIT-MSG       commit message
  INPUT_ALLOW-REMOVING   "true" to delete the remote file when the local one is gone
  GITHUB_REPOSITORY      owner/name of the target repository

The remote file is created, updated or removed with a single commit, or left
alone when it already matches.

Inputs are validated before any request. The token is then checked by reading
the repository, and the remote file is read once. Only then is a missing local
file compared against the remote one, so a refused removal (exit 2) happens
after those two reads and before any write.

Exit codes:
  0  pushed, or nothing to push
  1  missing or invalid input
  2  removal of the remote file is not allowed
  3  authentication failed
  4  any other failure`,
	Args:          noArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPush,
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return executeContext(ctx)
}

func executeContext(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return exitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file with inputs for local runs (process environment wins)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error); RUNNER_DEBUG=1 forces debug")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be pushed without writing to the repository")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(versionCmd)
}
