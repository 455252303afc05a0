package main

import (
	"fmt"

	"github.com/benaskins/passkeep/internal/clipboard"
	"github.com/benaskins/passkeep/internal/manager"
	"github.com/spf13/cobra"
)

var generateNoCopy bool

var generateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Print a new random password",
	Long:    "Print a 16-character password of letters, digits and punctuation. The password is also copied to the clipboard unless --no-copy is set or the clipboard is disabled in config.",
	Aliases: []string{"gen"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv("cli")
		if err != nil {
			return err
		}
		defer e.close()

		copying := !generateNoCopy && e.cfg.ClipboardEnabled()
		var opts []manager.Option
		if !copying {
			opts = append(opts, manager.WithClipboard(clipboard.Discard{}))
		}
		out := e.manager(opts...).OnGeneratePassword()

		fmt.Fprintln(cmd.OutOrStdout(), out.Password)
		if copying || !out.Copied {
			fmt.Fprintln(cmd.ErrOrStderr(), out.Message)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().BoolVar(&generateNoCopy, "no-copy", false, "do not copy the password to the clipboard")
	rootCmd.AddCommand(generateCmd)
}
