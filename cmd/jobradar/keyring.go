package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/secrets"
)

var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Manage API keys stored in the OS keychain",
	Long: "Credentials left empty in config.yaml are read from the OS keychain. Accounts: " +
		strings.Join(secrets.Accounts, ", ") + ".",
}

var keyringSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store a secret (read from stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyringSet,
}

var keyringDeleteCmd = &cobra.Command{
	Use:   "delete <account>",
	Short: "Remove a stored secret",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeyringDelete,
}

var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which accounts have a stored secret",
	RunE:  runKeyringStatus,
}

func init() {
	rootCmd.AddCommand(keyringCmd)
	keyringCmd.AddCommand(keyringSetCmd, keyringDeleteCmd, keyringStatusCmd)
}

func checkAccount(account string) error {
	if !slices.Contains(secrets.Accounts, account) {
		return fmt.Errorf("unknown account %q (want one of %s)", account, strings.Join(secrets.Accounts, ", "))
	}
	return nil
}

func runKeyringSet(cmd *cobra.Command, args []string) error {
	account := args[0]
	if err := checkAccount(account); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Enter secret for %s: ", account)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading secret: %w", err)
	}
	if err := secrets.Set(account, strings.TrimSpace(line)); err != nil {
		return fmt.Errorf("storing %s: %w", account, err)
	}
	fmt.Fprintf(os.Stderr, "stored %s in keychain service %q\n", account, secrets.Service)
	return nil
}

func runKeyringDelete(cmd *cobra.Command, args []string) error {
	account := args[0]
	if err := checkAccount(account); err != nil {
		return err
	}
	if err := secrets.Delete(account); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "deleted %s\n", account)
	return nil
}

func runKeyringStatus(cmd *cobra.Command, args []string) error {
	for _, account := range secrets.Accounts {
		status := "set"
		if _, err := secrets.Get(account); err != nil {
			status = "missing"
			if !errors.Is(err, secrets.ErrNotFound) {
				status = "error: " + err.Error()
			}
		}
		fmt.Printf("%-15s %s\n", account, status)
	}
	return nil
}
