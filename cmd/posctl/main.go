// Command posctl runs maintenance tasks against the POS database.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"go-pos-ws/internal/metrics"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/service"
	"go-pos-ws/pkg/config"
	"go-pos-ws/pkg/database"
	"go-pos-ws/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func setup(v *viper.Viper) (*env, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

func main() {
	v := viper.New()
	timeout := 30 * time.Second

	root := &cobra.Command{
		Use:           "posctl",
		Short:         "Maintenance commands for the POS backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-url", "", "postgres DSN, overrides DATABASE_URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "deadline for each command")
	_ = v.BindPFlag("DATABASE_URL", root.PersistentFlags().Lookup("database-url"))

	withEnv := func(run func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			e, err := setup(v)
			if err != nil {
				return err
			}
			defer e.log.Sync() //nolint:errcheck
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return run(ctx, e, args)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(_ context.Context, e *env, _ []string) error {
			if err := repository.AutoMigrate(e.db); err != nil {
				return err
			}
			fmt.Println("schema is up to date")
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed-admin",
		Short: "Create the ADMIN_USERNAME account if it does not exist",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
			users := service.NewUserService(repository.NewUserRepo(e.db), e.log)
			created, err := users.SeedAdmin(ctx, e.cfg.AdminUsername, e.cfg.AdminPassword)
			if err != nil {
				return err
			}
			if created {
				fmt.Printf("admin user %q created\n", e.cfg.AdminUsername)
			} else {
				fmt.Printf("admin user %q already exists\n", e.cfg.AdminUsername)
			}
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "reset-password <username> <new-password>",
		Short: "Set a user's password",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(func(ctx context.Context, e *env, args []string) error {
			users := service.NewUserService(repository.NewUserRepo(e.db), e.log)
			if err := users.ResetPassword(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("password for %q updated\n", args[0])
			return nil
		}),
	})

	root.AddCommand(reconcileCmd(withEnv))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "posctl:", err)
		os.Exit(1)
	}
}

type runner func(run func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error

func reconcileCmd(withEnv runner) *cobra.Command {
	recon := func(e *env) service.ReconciliationService {
		return service.NewReconciliationService(repository.NewReconciliationRepo(e.db), e.log, metrics.NewNoop())
	}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Inspect and resolve stock adjustments that did not apply",
	}

	var all bool
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List open reconciliation rows",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(ctx context.Context, e *env, _ []string) error {
			rows, err := recon(e).List(ctx, all, 0, limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tSOURCE\tSOURCE ID\tPRODUCT\tDELTA\tAPPLIED\tRESOLVED\tREASON")
			for _, r := range rows {
				resolved := "-"
				if r.ResolvedAt != nil {
					resolved = r.ResolvedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%t\t%s\t%s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Source, r.SourceID, r.ProductID, r.Delta, r.Applied, resolved, r.Reason)
			}
			return w.Flush()
		}),
	}
	list.Flags().BoolVar(&all, "all", false, "include resolved rows")
	list.Flags().IntVar(&limit, "limit", 100, "maximum rows to print")

	var by string
	resolve := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Mark a reconciliation row as handled",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(func(ctx context.Context, e *env, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			if err := recon(e).Resolve(ctx, id, by); err != nil {
				return err
			}
			fmt.Printf("reconciliation %s resolved\n", id)
			return nil
		}),
	}
	resolve.Flags().StringVar(&by, "by", "posctl", "who applied the correction")

	cmd.AddCommand(list, resolve)
	return cmd
}
