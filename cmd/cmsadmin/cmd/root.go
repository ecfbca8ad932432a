// Package cmd implements cmsadmin, the operator CLI that works on the CMS
// database directly.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/config"
	"github.com/upeosoft/cms/internal/server/repositories/repomanager"
	"golang.org/x/term"
)

// deps are the seams between the commands and the outside world.
type deps struct {
	openDB       func(ctx context.Context, dsn string) (*sql.DB, error)
	manager      func() repomanager.RepositoryManager
	readPassword func(fd int) ([]byte, error)
	lookupEnv    func(string) (string, bool)
	logger       logging.Logger
}

func defaultDeps() *deps {
	return &deps{
		openDB:       repomanager.OpenPostgres,
		manager:      repomanager.NewPostgresRepositoryManager,
		readPassword: term.ReadPassword,
		lookupEnv:    os.LookupEnv,
		logger:       logging.NewJSONLogger(os.Stderr, "warn"),
	}
}

type rootOptions struct {
	configFile string
	dsn        string
	cfg        *config.Config
}

func newRootCmd(d *deps) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cmsadmin",
		Short: "Operator tooling for the CMS API",
		Long: `cmsadmin manages the CMS database directly: it applies schema migrations,
creates accounts of any role and generates token signing secrets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var cargs []string
			if opts.configFile != "" {
				cargs = []string{"-c", opts.configFile}
			}
			cfg, err := config.Resolve(cargs, d.lookupEnv)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if opts.dsn != "" {
				cfg.DatabaseDSN = opts.dsn
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "JSON config file (env: CMS_CONFIG)")
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "PostgreSQL DSN (env: DATABASE_DSN)")

	root.AddCommand(newMigrateCmd(d, opts))
	root.AddCommand(newUsersCmd(d, opts))
	root.AddCommand(newSecretCmd())

	return root
}

func (o *rootOptions) open(ctx context.Context, d *deps) (*sql.DB, error) {
	db, err := d.openDB(ctx, o.cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
