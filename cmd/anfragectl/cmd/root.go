// Package cmd contains the CLI commands for anfragectl.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/anfrage/internal/client"
)

var (
	// Used for flags
	verbose   bool
	output    string
	serverURL string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "anfragectl",
	Short: "anfragectl - project request client",
	Long: `anfragectl talks to an anfrage server. It walks through the request
wizard on the terminal and reads the stored requests for operators.

Examples:
  # Send a project request with the full wizard
  anfragectl request --flow full

  # Resume an interrupted quick request
  anfragectl request --flow lite

  # List the newest stored requests
  ADMIN_DASHBOARD_TOKEN=... anfragectl admin list

  # Create the dashboard password hash
  anfragectl admin hash-password`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json, plain)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("ANFRAGE_URL", "http://localhost:8080"), "anfrage server URL")
}

// GetOutput returns the output format.
func GetOutput() string {
	return output
}

// PrintVerbose prints a message only if verbose mode is enabled.
func PrintVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient(token string) *client.Client {
	PrintVerbose("server: %s", serverURL)
	return client.New(client.Config{
		BaseURL:    serverURL,
		AdminToken: token,
		Timeout:    15 * time.Second,
	})
}
