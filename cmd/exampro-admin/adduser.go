package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"exampro/internal/apperr"
	"exampro/internal/crypto"
	"exampro/internal/model"
)

func newAddUserCmd(cli *commandLine) *cobra.Command {
	var email, name, role string
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or reset the password of an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			pwd, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			created, err := cli.addUser(cmd.Context(), email, name, model.Role(role), pwd)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s created\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "user %s updated\n", email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(model.RoleAdministrator), "administrator, director, teacher or student")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// addUser updates or creates a user.
func (cli *commandLine) addUser(ctx context.Context, email, name string, role model.Role, pwd string) (bool, error) {
	store, err := cli.openStore(ctx)
	if err != nil {
		return false, err
	}
	hash, err := crypto.HashPasswordCost(pwd, cli.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return false, store.SetPassword(ctx, existing.ID, hash)
	case !apperr.Is(err, apperr.KindNotFound):
		return false, err
	}

	if strings.TrimSpace(name) == "" {
		name = email
	}
	if _, err := store.CreateUser(ctx, model.User{Email: email, Name: name, Role: role, PasswordHash: hash}); err != nil {
		return false, err
	}
	return true, nil
}
