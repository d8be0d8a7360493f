package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ahara/ahara/internal/assessment"
	"github.com/ahara/ahara/internal/config"
	"github.com/ahara/ahara/internal/platform/auth"
	"github.com/ahara/ahara/internal/platform/db"
	"github.com/ahara/ahara/migrations"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ahara-server",
		Short:         "Ayurvedic diet practice API server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(clinicCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// migrationFiles prefers an on-disk directory so migrations can be edited
// without a rebuild, and falls back to the embedded set.
func migrationFiles(dir string) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	return migrations.FS
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// withMigrator loads config, opens the pool and hands fn a migrator.
func withMigrator(fn func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, m *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, cfg, pool, db.NewMigrator(pool, migrationFiles(cfg.MigrationsDir), logger))
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run clinic schema migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			clinic, _ := cmd.Flags().GetString("clinic")
			return withMigrator(func(ctx context.Context, cfg *config.Config, _ *pgxpool.Pool, m *db.Migrator) error {
				if clinic == "" {
					clinic = cfg.DefaultClinic
				}
				schema := db.SchemaName(clinic)
				fmt.Fprintf(cmd.OutOrStdout(), "Running migrations on schema: %s\n", schema)
				count, err := m.Up(ctx, schema)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
				return nil
			})
		},
	}
	upCmd.Flags().String("clinic", "", "Clinic identifier (defaults to DEFAULT_CLINIC)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			clinic, _ := cmd.Flags().GetString("clinic")
			return withMigrator(func(ctx context.Context, cfg *config.Config, _ *pgxpool.Pool, m *db.Migrator) error {
				if clinic == "" {
					clinic = cfg.DefaultClinic
				}
				schema := db.SchemaName(clinic)
				statuses, err := m.Status(ctx, schema)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				printStatus(cmd, schema, statuses)
				return nil
			})
		},
	}
	statusCmd.Flags().String("clinic", "", "Clinic identifier (defaults to DEFAULT_CLINIC)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func printStatus(cmd *cobra.Command, schema string, statuses []db.MigrationStatus) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Migration status for schema: %s\n", schema)
	fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	fmt.Fprintln(out, "---------- ---------------------------------------- ---------- --------------------")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func clinicCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clinic",
		Short: "Manage clinics",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a clinic schema and apply migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if !db.ValidClinicID(name) {
				return fmt.Errorf("invalid clinic identifier %q: use lowercase letters, digits and underscores", name)
			}
			return withMigrator(func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool, m *db.Migrator) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Creating clinic schema: %s\n", db.SchemaName(name))
				if err := db.CreateClinicSchema(ctx, pool, name, m); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Clinic created successfully.")
				return nil
			})
		},
	}
	createCmd.Flags().String("name", "", "Clinic identifier (lowercase alphanumeric and underscores)")
	cmd.AddCommand(createCmd)

	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute a daily calorie plan without a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			sex, _ := flags.GetString("sex")
			age, _ := flags.GetInt("age")
			category, _ := flags.GetString("category")

			d := assessment.Demographics{Sex: assessment.Sex(strings.ToLower(sex)), Age: age}
			optional := func(name string) *float64 {
				if !flags.Changed(name) {
					return nil
				}
				v, _ := flags.GetFloat64(name)
				return &v
			}
			d.WeightKG = optional("weight")
			d.HeightCM = optional("height")
			d.ActivityFactor = optional("activity")

			plan, err := assessment.Plan(d, assessment.Category(strings.ToLower(category)))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	cmd.Flags().String("sex", "", "male or female")
	cmd.Flags().Int("age", 0, "Age in years")
	cmd.Flags().Float64("weight", 0, "Weight in kg")
	cmd.Flags().Float64("height", 0, "Height in cm")
	cmd.Flags().Float64("activity", 0, "Activity factor")
	cmd.Flags().String("category", "", "Dominant constitution: vata, pitta or kapha")
	cmd.MarkFlagRequired("sex")
	cmd.MarkFlagRequired("age")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for a staff member",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			subject, _ := flags.GetString("subject")
			clinic, _ := flags.GetString("clinic")
			roles, _ := flags.GetStringSlice("roles")
			ttl, _ := flags.GetDuration("ttl")
			secret, _ := flags.GetString("secret")
			issuer, _ := flags.GetString("issuer")
			audience, _ := flags.GetString("audience")

			if secret == "" {
				secret = os.Getenv("AUTH_JWT_SECRET")
			}
			if len(secret) < 32 {
				return fmt.Errorf("a secret of at least 32 characters is required (--secret or AUTH_JWT_SECRET)")
			}
			if subject == "" {
				return fmt.Errorf("--subject is required")
			}
			if clinic != "" && !db.ValidClinicID(clinic) {
				return fmt.Errorf("invalid clinic identifier %q", clinic)
			}

			tok, err := auth.IssueToken(auth.JWTConfig{
				Issuer:   issuer,
				Audience: audience,
				Secret:   []byte(secret),
			}, subject, clinic, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("subject", "", "User id placed in the sub claim")
	cmd.Flags().String("clinic", "", "Clinic the token is scoped to")
	cmd.Flags().StringSlice("roles", []string{auth.RoleDietitian}, "Granted roles")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	cmd.Flags().String("secret", "", "HS256 secret (defaults to AUTH_JWT_SECRET)")
	cmd.Flags().String("issuer", os.Getenv("AUTH_ISSUER"), "iss claim")
	cmd.Flags().String("audience", os.Getenv("AUTH_AUDIENCE"), "aud claim")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server and questionnaire catalog versions",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ahara-server %s (catalog %s)\n", version, assessment.CatalogVersion)
		},
	}
}
