package cmd

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"mdb-audit/internal/dialect"
	"mdb-audit/internal/export"
	"mdb-audit/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare a loaded target database with the analysis snapshot",
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("output.dir", cmd.Flags().Lookup("output"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		path := export.ReportPath(viper.GetString("output.dir"))
		report, err := export.ReadJSON(path)
		if err != nil {
			return fmt.Errorf("failed to load analysis (run analyze first): %w", err)
		}

		config, err := GetActiveDBConfig()
		if err != nil {
			return err
		}
		fmt.Printf("🔍 Connected to %s (%s)\n", config.Name, config.Driver)

		db, err := sql.Open(config.Driver, config.DSN)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to connect to db: %w", err)
		}

		d := dialect.GetDialect(config.Driver)
		schemaName := config.Schema
		if schemaName == "" {
			schemaName = viper.GetString("target.schema")
		}
		if d.Name() != report.TargetDialect {
			Logger.Warn("target differs from the analyzed dialect",
				zap.String("analyzed", report.TargetDialect), zap.String("target", d.Name()))
		}

		inspector := &verify.DBInspector{DB: db, Dialect: d, Schema: schemaName}
		results, err := verify.Run(ctx, report, inspector, Logger)
		if err != nil {
			return err
		}

		verify.Print(os.Stdout, results)
		if n := verify.Failed(results); n > 0 {
			return fmt.Errorf("%d of %d tables do not match the analysis", n, len(results))
		}
		fmt.Println("✅ All tables match")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("output", "", "Directory holding a previous analysis (overrides config)")
}
