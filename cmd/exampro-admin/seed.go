package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"exampro/internal/seed"
)

func newSeedCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demonstration school into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := cli.openStore(cmd.Context())
			if err != nil {
				return err
			}
			res, err := seed.Demo(cmd.Context(), store, cli.cfg.BcryptCost)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if res.Skipped {
				fmt.Fprintln(out, "demo data already present")
				return nil
			}
			fmt.Fprintf(out, "seeded %d users, %d students, %d modules, %d grades, %d exams\n",
				res.Users, res.Students, res.Modules, res.Grades, res.Exams)
			for _, account := range seed.Accounts {
				fmt.Fprintf(out, "  %-13s %s / %s\n", account.Role, account.Email, account.Password)
			}
			fmt.Fprintf(out, "  %-13s <student email> / %s\n", "student", seed.StudentPassword())
			return nil
		},
	}
}
