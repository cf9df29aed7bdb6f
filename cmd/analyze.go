package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"mdb-audit/internal/analyze"
	"mdb-audit/internal/export"
	"mdb-audit/internal/mdb"
)

var assumeYes bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze an Access database and write migration artifacts",
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("source.path", cmd.Flags().Lookup("source"))
		viper.BindPFlag("output.dir", cmd.Flags().Lookup("output"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source := viper.GetString("source.path")
		if source == "" {
			return fmt.Errorf("source.path is required (via --source or config)")
		}
		outputDir := viper.GetString("output.dir")

		if !assumeYes {
			ok, err := confirmOverwrite(outputDir)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		cfg := analysisConfig()
		runner := &mdb.ExecRunner{BinDir: viper.GetString("tool.bin_dir")}
		client, err := mdb.New(ctx, runner, source, Logger)
		if err != nil {
			return err
		}
		client.SystemPrefix = viper.GetString("tool.system_prefix")

		fmt.Printf("🔍 Analyzing %s (target: %s)\n", source, cfg.Dialect.Name())
		start := time.Now()

		b := analyze.NewBuilder(client, cfg, Logger)

		var bar *uiprogress.Bar
		b.OnTables = func(total int) {
			if total == 0 {
				return
			}
			uiprogress.Start()
			bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Profiling: "
			})
		}
		b.OnTable = func(string) {
			if bar != nil {
				bar.Incr()
			}
		}

		report, runErr := b.Run(ctx)
		if bar != nil {
			uiprogress.Stop()
		}
		if runErr != nil {
			return runErr
		}

		exporter := &export.Exporter{Dialect: cfg.Dialect, Schema: cfg.Schema, Log: Logger}
		written, exportErr := exporter.ExportAll(report, outputDir)
		Logger.Info("artifacts written", zap.Int("count", len(written)), zap.Duration("elapsed", time.Since(start)))

		fmt.Println()
		export.PrintSummary(os.Stdout, report, outputDir)

		if exportErr != nil {
			return fmt.Errorf("some artifacts could not be written: %w", exportErr)
		}
		fmt.Printf("✅ %d files written to %s\n", len(written), outputDir)
		return nil
	},
}

// confirmOverwrite asks before writing into a directory that already has
// content. A missing or empty directory needs no confirmation.
func confirmOverwrite(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(entries) == 0) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading output dir: %w", err)
	}

	prompt := promptui.Prompt{
		Label: fmt.Sprintf("%s is not empty, overwrite files? (y/n)", dir),
		Validate: func(input string) error {
			if input != "y" && input != "n" {
				return fmt.Errorf("invalid input")
			}
			return nil
		},
	}
	answer, err := prompt.Run()
	if err != nil {
		return false, err
	}
	return answer == "y", nil
}

func init() {
	RootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("source", "", "Path to the .mdb/.accdb file (overrides config)")
	analyzeCmd.Flags().String("output", "", "Output directory (overrides config)")
	analyzeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask before writing into a non-empty output directory")
}
