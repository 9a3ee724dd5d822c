package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newReportCmd(cli *commandLine) *cobra.Command {
	var studentID int64
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a student's transcript from the grade query service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if studentID <= 0 {
				return fmt.Errorf("--student-id must be positive")
			}
			ctx := cmd.Context()
			reporter, err := cli.reporter(ctx)
			if err != nil {
				return err
			}
			defer reporter.Close()

			rows, err := reporter.StudentGrades(ctx, studentID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODULE\tNAME\tSCORE\tSTATUS")
			for _, row := range rows {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", row.ModuleCode, row.ModuleName, row.Score, row.Status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			avg, err := reporter.StudentAverage(ctx, studentID)
			switch {
			case status.Code(err) == codes.NotFound:
				fmt.Fprintln(cmd.OutOrStdout(), "average: n/a")
			case err != nil:
				return err
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "average: %.2f/20\n", avg)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&studentID, "student-id", 0, "student id")
	return cmd
}
