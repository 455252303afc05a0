package main

import (
	"errors"
	"fmt"

	"github.com/benaskins/passkeep/internal/manager"
	"github.com/spf13/cobra"
)

var (
	saveGenerate bool
	saveYes      bool
)

var saveCmd = &cobra.Command{
	Use:   "save <website> <username> [password]",
	Short: "Save the login for a website",
	Long: `Save the login for a website, replacing any login already saved for it.

If password is omitted it is generated with --generate, prompted for on a
terminal, or read from stdin (useful for piping).`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv("cli")
		if err != nil {
			return err
		}
		defer e.close()

		website, identity := args[0], args[1]
		in, stderr := cmd.InOrStdin(), cmd.ErrOrStderr()

		var opts []manager.Option
		_, interactive := terminalFd(in)
		if e.cfg.ConfirmSaveEnabled() && !saveYes && interactive {
			opts = append(opts, manager.WithConfirmer(lineConfirmer{in: in, out: stderr}))
		}
		mgr := e.manager(opts...)

		var secret string
		switch {
		case len(args) == 3:
			if saveGenerate {
				return errors.New("--generate cannot be combined with a password argument")
			}
			secret = args[2]
		case saveGenerate:
			gen := mgr.OnGeneratePassword()
			secret = gen.Password
			fmt.Fprintln(stderr, gen.Message)
		default:
			secret, err = readSecret(in, stderr)
			if err != nil {
				return err
			}
		}

		out := mgr.OnSave(website, identity, secret)
		if !out.OK() {
			return outcomeError(out)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		return nil
	},
}

// outcomeError turns a failed Outcome into the command's error.
func outcomeError(out manager.Outcome) error {
	if out.Kind == manager.KindError {
		return fmt.Errorf("%s: %s", out.Title, out.Message)
	}
	return errors.New(out.Message)
}

func init() {
	saveCmd.Flags().BoolVarP(&saveGenerate, "generate", "g", false, "generate the password")
	saveCmd.Flags().BoolVarP(&saveYes, "yes", "y", false, "save without asking for confirmation")
	rootCmd.AddCommand(saveCmd)
}
