package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/benaskins/passkeep/internal/vault"
	"github.com/spf13/cobra"
)

var searchCopy bool

var searchCmd = &cobra.Command{
	Use:     "search <website>",
	Short:   "Show the login saved for a website",
	Aliases: []string{"get"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv("cli")
		if err != nil {
			return err
		}
		defer e.close()

		out := e.manager().OnSearch(args[0])
		if !out.OK() {
			return outcomeError(out)
		}

		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		if searchCopy {
			if err := e.clipboard().Copy(out.Record.Secret); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "password not copied: %v\n", err)
			}
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved websites and usernames",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv("cli")
		if err != nil {
			return err
		}
		defer e.close()

		entries, err := e.store.List()
		if errors.Is(err, vault.ErrNotInitialized) {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts saved yet.")
			return nil
		}
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts saved yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "WEBSITE\tUSERNAME")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\t%s\n", entry.Website, entry.Identity)
		}
		return w.Flush()
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <website>",
	Short:   "Remove the login saved for a website",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv("cli")
		if err != nil {
			return err
		}
		defer e.close()

		if err := e.store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted details for %s.\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import logins from a pipe-separated text file",
	Long: `Import logins from a text file with one "website | username | password"
line per login. Imported logins replace saved logins for the same website.
Nothing is written if any line is malformed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv("cli")
		if err != nil {
			return err
		}
		defer e.close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := vault.ImportLegacy(e.store, f)
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d logins from %s.\n", n, args[0])
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVarP(&searchCopy, "copy", "c", false, "copy the password to the clipboard")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(importCmd)
}
