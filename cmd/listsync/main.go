// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	apperrors "github.com/sirseerhq/listsync/internal/errors"
	"github.com/sirseerhq/listsync/pkg/version"
)

func main() {
	os.Exit(run(os.Args[1:], newEnv(os.Stdout, os.Stderr)))
}

// env carries the process-level dependencies of a command run. Tests build
// their own to capture output and swap the API client.
type env struct {
	stdout    io.Writer
	stderr    io.Writer
	newClient clientFactory
}

func newEnv(stdout, stderr io.Writer) *env {
	return &env{
		stdout:    stdout,
		stderr:    stderr,
		newClient: buildClient,
	}
}

func run(args []string, e *env) int {
	root := newRootCommand(e)
	root.SetArgs(args)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return mapErrorToExitCode(err)
	}
	return 0
}

func newRootCommand(e *env) *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:   "listsync",
		Short: "Page through community lists and export them",
		Long: `listsync pulls cursor-paginated lists from the community API: boards,
posts, a user's posts, comments, group members and chat message search.
Pages are merged without duplicates, streamed as NDJSON or rendered as a
table, and the cursor is checkpointed so a later run can resume.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && cmd.Flags().Changed("env-file") {
				return fmt.Errorf("failed to load env file: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File of KEY=value pairs loaded into the environment")

	rootCmd.AddCommand(newPullCommand(e))
	rootCmd.AddCommand(newVersionCommand(e))

	return rootCmd
}

func newVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(e.stdout, version.String())
		},
	}
}

// mapErrorToExitCode maps internal errors to appropriate exit codes. Only
// sentinel matches count; local failures whose text happens to look like an
// HTTP status stay general errors.
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Check for specific error types
	if errors.Is(err, apperrors.ErrInvalidToken) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrRateLimit) {
		return 2 // Authentication/authorization errors
	}

	if errors.Is(err, apperrors.ErrNetworkFailure) ||
		errors.Is(err, apperrors.ErrCircuitOpen) ||
		errors.Is(err, context.DeadlineExceeded) {
		return 3 // Network errors
	}

	if errors.Is(err, apperrors.ErrServer) || errors.Is(err, apperrors.ErrParse) {
		return 4 // The API answered but not usefully
	}

	return 1 // General error
}
