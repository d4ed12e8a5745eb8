// Package main provides dqcheck, the command-line front end of the survey data-quality checker.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errIssuesFound makes the process exit with issuesExitCode under --fail-on-issues.
var errIssuesFound = errors.New("validation found issues")

const issuesExitCode = 2

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dqcheck",
		Short:         "Survey data-quality checker",
		Long:          "dqcheck validates survey data workbooks against a key workbook and writes a localized quality report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errIssuesFound) {
			os.Exit(issuesExitCode)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
