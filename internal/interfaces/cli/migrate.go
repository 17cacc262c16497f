package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/smilescombine/internal/infrastructure/database/postgres"
	"github.com/turtacn/smilescombine/pkg/errors"
)

type migrationState struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (s migrationState) String() string {
	return fmt.Sprintf("version %d (dirty: %t)\n", s.Version, s.Dirty)
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the run-history database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnString(cmd, func(conn string) error {
				if err := postgres.RunMigrations(conn); err != nil {
					return err
				}
				return printState(cmd, conn)
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnString(cmd, func(conn string) error {
				if err := postgres.RollbackMigration(conn, steps); err != nil {
					return err
				}
				return printState(cmd, conn)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnString(cmd, func(conn string) error {
				return printState(cmd, conn)
			})
		},
	}

	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied after a failed migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.InvalidParam("version must be an integer").WithDetail(args[0])
			}
			return withConnString(cmd, func(conn string) error {
				if err := postgres.ForceMigrationVersion(conn, v); err != nil {
					return err
				}
				return printState(cmd, conn)
			})
		},
	}

	cmd.AddCommand(up, down, status, force)
	return cmd
}

func printState(cmd *cobra.Command, conn string) error {
	v, dirty, err := postgres.MigrationStatus(conn)
	if err != nil {
		return err
	}
	return PrintResult(cmd, migrationState{Version: v, Dirty: dirty})
}

// withConnString opens the configured database only to resolve and verify
// its connection string.
func withConnString(cmd *cobra.Command, fn func(conn string) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if !cliCtx.Config.Postgres.Enabled {
		return errors.Unavailable("migrate requires postgres.enabled")
	}
	c, err := postgres.NewConnection(cmd.Context(), postgresConfig(cliCtx.Config.Postgres), cliCtx.Logger)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c.ConnString())
}

//Personal.AI order the ending
