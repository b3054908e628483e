package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/good-yellow-bee/anfrage/internal/client"
	"github.com/good-yellow-bee/anfrage/internal/security"
)

var adminToken string

// adminCmd represents the admin command group
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator commands",
	Long: `Commands for operators of an anfrage server.

The admin token is read from --token, then ADMIN_DASHBOARD_TOKEN, and is
prompted for when neither is set.`,
}

// adminListCmd lists the newest stored requests
var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest stored requests",
	Long: `List up to 100 stored project requests, newest first.

Example:
  anfragectl admin list -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := adminToken
		if token == "" {
			token = os.Getenv("ADMIN_DASHBOARD_TOKEN")
		}
		if token == "" {
			var err error
			token, err = promptPassword("Admin token: ")
			if err != nil {
				return fmt.Errorf("read token: %w", err)
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		list, err := newClient(token).ListRequests(ctx)
		if err != nil {
			return err
		}
		return printRequests(cmd.OutOrStdout(), list, GetOutput())
	},
}

// adminHashCmd creates a bcrypt hash for the dashboard password
var adminHashCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a dashboard password",
	Long: `Prompt for a password and print its bcrypt hash for ADMIN_PASSWORD_HASH.

Example:
  anfragectl admin hash-password`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := promptPassword("Password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var sealOutput string

// adminSealCmd seals a server config file
var adminSealCmd = &cobra.Command{
	Use:   "seal-config <file>",
	Short: "Encrypt a server config file",
	Long: `Encrypt a YAML config file with a passphrase. The server opens files
ending in .enc with the passphrase from ANFRAGE_CONFIG_KEY.

Example:
  anfragectl admin seal-config anfrage.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plaintext, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		passphrase, err := promptPassword("Passphrase: ")
		if err != nil {
			return fmt.Errorf("read passphrase: %w", err)
		}

		out := sealOutput
		if out == "" {
			out = args[0]
		}
		path, err := security.WriteFile(out, plaintext, []byte(passphrase))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sealed config written to %s\n", path)
		return nil
	},
}

func init() {
	adminSealCmd.Flags().StringVar(&sealOutput, "out", "", "output path (default <file>.enc)")

	adminCmd.PersistentFlags().StringVar(&adminToken, "token", "", "admin token (default $ADMIN_DASHBOARD_TOKEN)")

	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminHashCmd)
	adminCmd.AddCommand(adminSealCmd)
	rootCmd.AddCommand(adminCmd)
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func printRequests(w io.Writer, list *client.RequestList, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "plain":
		for _, r := range list.Requests {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.CreatedAt.Format(time.RFC3339), r.Flow, r.ContactName, r.ContactEmail, r.ProjectType)
		}
		return nil
	}

	if list.Error != "" {
		fmt.Fprintf(w, "Fehler beim Laden: %s\n", list.Error)
		return nil
	}
	if len(list.Requests) == 0 {
		fmt.Fprintln(w, "Noch keine Anfragen vorhanden.")
		return nil
	}

	fmt.Fprintf(w, "\n%-16s  %-5s  %-24s  %-30s  %-20s  %s\n",
		"CREATED", "FLOW", "NAME", "EMAIL", "PROJECT", "BUDGET")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, r := range list.Requests {
		fmt.Fprintf(w, "%-16s  %-5s  %-24s  %-30s  %-20s  %s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Flow,
			truncate(r.ContactName, 24),
			truncate(r.ContactEmail, 30),
			truncate(r.ProjectType, 20),
			r.BudgetRange,
		)
	}
	fmt.Fprintf(w, "\nTotal: %d request(s)\n", len(list.Requests))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// promptPassword prompts for a secret without echoing to the terminal.
func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)

	fd := syscall.Stdin
	if term.IsTerminal(fd) {
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(passwordBytes), nil
	}

	// Fallback for piped input
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(password), nil
}
