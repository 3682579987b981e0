package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"autotable/adapters/excel"
	"autotable/adapters/postgres"
	"autotable/app"
	"autotable/internal"
	"autotable/internal/config"
	"autotable/internal/errors"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("no .env file found, using system environment variables")
	}

	var cfgFile string
	rootCmd := &cobra.Command{
		Use:           "autotable",
		Short:         "Generate grouped summary and regression tables from tabular data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default ./autotable.yaml)")

	rootCmd.AddCommand(
		newGenerateCmd(&cfgFile),
		newInferCmd(&cfgFile),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error [%s]: %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newGenerateCmd(cfgFile *string) *cobra.Command {
	var only []string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate [reports.yaml]",
		Short: "Render every report in a definition file to xlsx",
		Long: `Render the reports of a definition file. Each report gets its own
workbook under the output directory plus a markdown preview.

Example: autotable generate reports.yaml --only baseline --output-dir out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), *cfgFile, args[0], only)
			if err != nil {
				return err
			}
			defer env.close()
			if outputDir != "" {
				env.cfg.OutputDir = outputDir
			}

			results, err := env.service.Run(cmd.Context(), env.reports)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d table(s)\t%s\trun %s\n", r.Name, r.Tables, r.Workbook, r.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "run only the named reports")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "override the output directory")
	return cmd
}

type column struct {
	Column string `yaml:"column"`
	Label  string `yaml:"label"`
	Type   string `yaml:"type"`
}

func newInferCmd(cfgFile *string) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "infer [reports.yaml]",
		Short: "Print the labels and types each report's columns resolve to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), *cfgFile, args[0], only)
			if err != nil {
				return err
			}
			defer env.close()

			out := make(map[string][]column, len(env.reports))
			for i := range env.reports {
				r := &env.reports[i]
				catalog, names, err := env.service.Infer(cmd.Context(), r)
				if err != nil {
					return errors.Wrapf(err, "report %s", r.Name)
				}
				cols := make([]column, 0, len(names))
				for _, name := range names {
					cols = append(cols, column{Column: name, Label: catalog.Label(name), Type: string(catalog.TypeOf(name))})
				}
				out[r.Name] = cols
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "inspect only the named reports")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "autotable", version)
		},
	}
}

type environment struct {
	cfg     *config.Config
	reports []config.Report
	service *app.ReportService
	logger  *internal.Logger
	db      *sqlx.DB
}

func (e *environment) close() {
	if e.db != nil {
		e.db.Close()
	}
	_ = e.logger.Sync()
}

// setup loads settings and report definitions and wires the data sources.
// The database is only dialed when a selected report queries it.
func setup(ctx context.Context, cfgFile, reportsFile string, only []string) (*environment, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	rf, err := config.LoadReports(reportsFile)
	if err != nil {
		return nil, err
	}
	reports, err := selectReports(rf.Reports, only)
	if err != nil {
		return nil, err
	}

	env := &environment{cfg: cfg, reports: reports, logger: logger}
	deps := app.ReportDeps{
		Files:   excel.NewDataReader(excel.ReaderConfig{Sheet: cfg.Sheet}, logger),
		Logger:  logger,
		BaseDir: filepath.Dir(reportsFile),
	}
	if needsDatabase(reports) && cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.ExternalServiceError("postgres", err)
		}
		env.db = db
		deps.Database = postgres.NewQuerySource(db, logger)
	}
	env.service = app.NewReportService(cfg, deps)
	return env, nil
}

func selectReports(all []config.Report, only []string) ([]config.Report, error) {
	if len(only) == 0 {
		return all, nil
	}
	byName := make(map[string]config.Report, len(all))
	for _, r := range all {
		byName[r.Name] = r
	}
	selected := make([]config.Report, 0, len(only))
	for _, name := range only {
		r, ok := byName[name]
		if !ok {
			return nil, errors.InvalidInput(fmt.Sprintf("no report named %q", name))
		}
		selected = append(selected, r)
	}
	return selected, nil
}

func needsDatabase(reports []config.Report) bool {
	for _, r := range reports {
		if r.Query != "" {
			return true
		}
	}
	return false
}
