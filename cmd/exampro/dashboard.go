package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"exampro/internal/client"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summary for the signed-in user's role",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, session, err := a.loggedInClient()
			if err != nil {
				return err
			}
			data := client.NewLoader(c).Load(cmd.Context())
			if !c.LoggedIn() {
				return fmt.Errorf("session expired, log in again")
			}
			d, err := client.BuildDashboard(session.User, data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if data.Offline() {
				printSources(out, data)
			}
			printDashboard(out, d)
			return nil
		},
	}
}

func printSources(out io.Writer, data client.Dataset) {
	fmt.Fprintln(out, "warning: some data could not be loaded")
	for _, c := range []struct {
		name   string
		source client.DataSource
	}{
		{"students", data.Students.Source},
		{"teachers", data.Teachers.Source},
		{"modules", data.Modules.Source},
		{"filieres", data.Filieres.Source},
		{"grades", data.Grades.Source},
		{"exams", data.Exams.Source},
	} {
		if c.source != client.Live {
			fmt.Fprintf(out, "  %s: %s\n", c.name, c.source)
		}
	}
}

func printDashboard(out io.Writer, d client.Dashboard) {
	switch d := d.(type) {
	case client.AdminDashboard:
		fmt.Fprintf(out, "students: %d\nteachers: %d\nfilieres: %d\nmodules: %d\nexams: %d\n",
			d.Students, d.Teachers, d.Filieres, d.Modules, d.Exams)
	case client.DirectorDashboard:
		for _, f := range d.Filieres {
			fmt.Fprintf(out, "%s (%s): %d students, %d modules, %d upcoming exams\n",
				f.Filiere.Name, f.Filiere.Code, f.Students, f.Modules, f.UpcomingExams)
		}
		fmt.Fprintf(out, "admission rate: %.0f%% (%d/%d)\n", d.AdmissionRate*100, d.Admitted, d.Graded)
	case client.TeacherDashboard:
		for _, m := range d.Modules {
			avg := "n/a"
			if m.HasAverage {
				avg = fmt.Sprintf("%.1f", m.Average)
			}
			fmt.Fprintf(out, "%s %s: %d graded, average %s\n", m.Module.Code, m.Module.Name, m.Graded, avg)
		}
	case client.StudentDashboard:
		for _, r := range d.Results {
			fmt.Fprintf(out, "%s %s: %.1f %s\n", r.Module.Code, r.Module.Name, r.Score, r.Status)
		}
		if d.HasAverage {
			fmt.Fprintf(out, "moyenne: %.1f/20\n", d.Average)
		} else {
			fmt.Fprintln(out, "moyenne: n/a")
		}
		fmt.Fprintf(out, "admis: %d, en attente: %d\n", d.Admitted, d.Pending)
		for _, e := range d.UpcomingExams {
			fmt.Fprintf(out, "upcoming: %s %s %s %s\n", e.ExamDate, e.ExamTime, e.ModuleCode, e.Room)
		}
	}
}
