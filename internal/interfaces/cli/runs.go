package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/turtacn/smilescombine/internal/domain/library"
)

type runList []*domain.Run

func (l runList) TableHeaders() []string {
	return []string{"ID", "NAME", "STATUS", "STRUCTURES", "STARTED"}
}

func (l runList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, r := range l {
		rows = append(rows, []string{
			r.ID,
			r.Name,
			string(r.Status),
			fmt.Sprint(r.Combinations),
			r.StartedAt.Format(time.RFC3339),
		})
	}
	return rows
}

type runDetail struct {
	*domain.Run
}

func (d runDetail) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (d runDetail) TableRows() [][]string {
	r := d.Run
	nmax := "unbounded"
	if r.NMax != nil {
		nmax = fmt.Sprint(*r.NMax)
	}
	return [][]string{
		{"id", r.ID},
		{"name", r.Name},
		{"status", string(r.Status)},
		{"skeleton", r.Skeleton},
		{"template", r.Template},
		{"nmax", nmax},
		{"nconnect", fmt.Sprint(r.NConnect)},
		{"vacant_sites", fmt.Sprint(r.VacantSites)},
		{"combinations", fmt.Sprint(r.Combinations)},
		{"output", r.OutputPath},
		{"artifact", r.ArtifactURI},
		{"error", r.Error},
	}
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded library runs (requires postgres)",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				runs, err := a.service.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return PrintResult(cmd, runList(runs))
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum runs to show")

	get := &cobra.Command{
		Use:   "get RUN_ID",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				run, err := a.service.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, runDetail{run})
			})
		},
	}

	structures := &cobra.Command{
		Use:   "structures RUN_ID",
		Short: "Print the structures of a run, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app) error {
				out, err := a.service.Structures(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return PrintResult(cmd, out)
			})
		},
	}

	cmd.AddCommand(list, get, structures)
	return cmd
}

// withApp builds the app from the command's CLI context, runs fn and closes
// the app.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cliCtx.Config, cliCtx.Logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

//Personal.AI order the ending
