package main

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bizledger/backend/internal/infrastructure/logger"
	"github.com/bizledger/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the flags shared by every subcommand
type options struct {
	dir      string
	logLevel string
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the BizLedger postgres schema",
		Long: `Apply, roll back and inspect schema migrations.

Database settings come from the same configuration as the server
(config.toml, .env or BIZ_DATABASE_* variables).

Examples:
  migrate up
  migrate steps -- -1
  migrate create add_sale_discount "Per-line discount column" --dir ./migrations`,
		SilenceUsage: true,
	}
	opts := &options{}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "Migrations directory; empty uses the migrations built into the binary")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	root.AddCommand(
		opts.migratorCommand("up", "Apply all pending migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() }),
		opts.migratorCommand("down", "Roll back all migrations", cobra.NoArgs,
			func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() }),
		opts.migratorCommand("steps <n>", "Apply n migrations (negative n rolls back)", cobra.ExactArgs(1), runSteps),
		opts.migratorCommand("goto <version>", "Migrate up or down to a version", cobra.ExactArgs(1), runGoTo),
		opts.migratorCommand("version", "Show the applied version", cobra.NoArgs, runVersion),
		opts.migratorCommand("force <version>", "Mark a version as applied and clear the dirty flag", cobra.ExactArgs(1), runForce),
		opts.newDropCommand(),
		opts.newCreateCommand(),
		opts.newListCommand(),
	)
	return root
}

type migratorFunc func(m *migration.Migrator, args []string, log *zap.Logger) error

// migratorCommand wires a subcommand that needs a database connection
func (o *options) migratorCommand(use, short string, args cobra.PositionalArgs, run migratorFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, positional []string) error {
			return o.withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				return run(m, positional, log)
			})
		},
	}
}

func (o *options) withMigrator(fn func(*migration.Migrator, *zap.Logger) error) error {
	log, err := newLogger(o.logLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	dbCfg, err := loadDatabaseConfig()
	if err != nil {
		return err
	}
	db, err := sql.Open("postgres", dbCfg.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, migration.Source(o.dir), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m, log)
}

func runSteps(m *migration.Migrator, args []string, _ *zap.Logger) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid step count %q", args[0])
	}
	return m.Steps(n)
}

func runGoTo(m *migration.Migrator, args []string, _ *zap.Logger) error {
	version, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	return m.GoTo(uint(version))
}

func runVersion(m *migration.Migrator, _ []string, log *zap.Logger) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		log.Info("No migrations applied")
		return nil
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func runForce(m *migration.Migrator, args []string, _ *zap.Logger) error {
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}
	return m.Force(version)
}

func (o *options) newDropCommand() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every database object (destroys all data)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !confirm {
				return errors.New("drop refused; pass --confirm to destroy all data")
			}
			return o.withMigrator(func(m *migration.Migrator, _ *zap.Logger) error { return m.Drop() })
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Confirm that all data will be lost")
	return cmd
}

func (o *options) newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := o.dir
			if dir == "" {
				dir = "migrations"
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}

			f, err := migration.Create(dir, args[0], description, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created migration %s\n", f.Version)
			fmt.Fprintf(out, "  up:   %s\n", filepath.Clean(f.UpPath))
			fmt.Fprintf(out, "  down: %s\n", filepath.Clean(f.DownPath))
			return nil
		},
	}
}

func (o *options) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := migration.List(migration.Source(o.dir))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No migrations found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}
