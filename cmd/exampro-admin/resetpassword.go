package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"exampro/internal/crypto"
)

func newResetPasswordCmd(cli *commandLine) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Set a new password for a user; the password is prompted",
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			if err := cli.resetPassword(cmd.Context(), email, pwd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password updated for %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	store, err := cli.openStore(ctx)
	if err != nil {
		return err
	}
	usr, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := crypto.HashPasswordCost(pwd, cli.cfg.BcryptCost)
	if err != nil {
		return err
	}
	return store.SetPassword(ctx, usr.ID, hash)
}
