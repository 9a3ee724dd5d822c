package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"exampro/internal/client"
)

var readPasswordFunc = term.ReadPassword

type app struct {
	out         io.Writer
	serverURL   string
	sessionPath string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "exampro",
		Short:        "Command line client for the ExamPro API",
		SilenceUsage: true,
	}
	root.SetOut(a.out)

	defaultURL := os.Getenv("EXAMPRO_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:3001"
	}
	root.PersistentFlags().StringVar(&a.serverURL, "server", defaultURL, "API base URL")
	root.PersistentFlags().StringVar(&a.sessionPath, "session", "", "session file (defaults to the user config dir)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newGradesCmd(a),
		newDashboardCmd(a),
	)
	return root
}

// client builds an API client with the persisted session restored.
func (a *app) client() (*client.Client, error) {
	path := a.sessionPath
	if path == "" {
		var err error
		if path, err = client.DefaultSessionPath(); err != nil {
			return nil, err
		}
	}
	c := client.New(a.serverURL, client.NewFileSessionStore(path))
	if err := c.Init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *app) loggedInClient() (*client.Client, client.Session, error) {
	c, err := a.client()
	if err != nil {
		return nil, client.Session{}, err
	}
	session, ok := c.Session()
	if !ok {
		return nil, client.Session{}, errors.New("not logged in, run `exampro login` first")
	}
	return c, session, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Password:")
			pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
			fmt.Fprintln(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			user, err := c.Login(cmd.Context(), strings.TrimSpace(email), string(pwd))
			if err != nil {
				if client.IsStatus(err, http.StatusUnauthorized) {
					return errors.New("invalid email or password")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", user.Name, user.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the token and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.loggedInClient()
			if err != nil {
				return err
			}
			user, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> %s\n", user.Name, user.Email, user.Role)
			return nil
		},
	}
}

func newGradesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List the grades visible to the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := a.loggedInClient()
			if err != nil {
				return err
			}
			list, err := c.Grades(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STUDENT\tMODULE\tSCORE\tSTATUS")
			for _, g := range list {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", g.StudentName, g.ModuleCode, g.Score, g.Status)
			}
			return w.Flush()
		},
	}
}
