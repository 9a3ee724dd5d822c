package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"exampro/internal/db"
)

func newSchemaCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create the tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := cli.openStore(cmd.Context()); err != nil {
				return err
			}
			if cli.pool == nil {
				return errors.New("schema needs a postgres connection")
			}
			if err := db.ApplySchema(cmd.Context(), cli.pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		},
	}
}
