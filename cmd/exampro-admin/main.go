package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"exampro/internal/clients"
	"exampro/internal/config"
	"exampro/internal/db"
	"exampro/internal/repository"
)

var readPasswordFunc = term.ReadPassword

type gradeReporter interface {
	StudentGrades(ctx context.Context, studentID int64) ([]clients.GradeRow, error)
	StudentAverage(ctx context.Context, studentID int64) (float64, error)
	Close()
}

type commandLine struct {
	cfg   config.Config
	store repository.Repository
	pool  *pgxpool.Pool
	out   io.Writer
	// dialGrades is swapped in tests.
	dialGrades func(ctx context.Context) (gradeReporter, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cli := &commandLine{cfg: cfg, out: os.Stdout}
	defer cli.close()

	if err := newRootCmd(cli).Execute(); err != nil {
		cli.close()
		os.Exit(1)
	}
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:          "exampro-admin",
		Short:        "Administration tasks for the ExamPro database",
		SilenceUsage: true,
	}
	root.SetOut(cli.out)
	root.AddCommand(
		newSchemaCmd(cli),
		newAddUserCmd(cli),
		newResetPasswordCmd(cli),
		newSeedCmd(cli),
		newReportCmd(cli),
	)
	return root
}

// openStore connects to postgres unless a store was injected.
func (cli *commandLine) openStore(ctx context.Context) (repository.Repository, error) {
	if cli.store != nil {
		return cli.store, nil
	}
	if cli.cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	pool, err := db.NewPool(ctx, cli.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cli.pool = pool
	cli.store = repository.NewStore(pool)
	return cli.store, nil
}

func (cli *commandLine) reporter(ctx context.Context) (gradeReporter, error) {
	if cli.dialGrades != nil {
		return cli.dialGrades(ctx)
	}
	if cli.cfg.ServiceAuthToken == "" {
		return nil, errors.New("SERVICE_AUTH_TOKEN is required")
	}
	grades, err := clients.NewGrades(ctx, cli.cfg.GradesGRPCAddr, cli.cfg.ServiceAuthToken, cli.cfg.GRPCDialTimeout)
	if err != nil {
		return nil, err
	}
	return grades, nil
}

func (cli *commandLine) close() {
	if cli.pool != nil {
		cli.pool.Close()
		cli.pool = nil
	}
}

func promptPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errors.New("password must not be empty")
	}
	return string(pwd), nil
}
