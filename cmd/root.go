package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	logLevel string
	Logger   *zap.Logger
)

var RootCmd = &cobra.Command{
	Use:   "mdb-audit",
	Short: "An Access database migration analyzer",
	Long: `
  __  __ ____  ____        _   _   _ ____ ___ _____
 |  \/  |  _ \| __ )      / \ | | | |  _ \_ _|_   _|
 | |\/| | | | |  _ \____ / _ \| | | | | | | |  | |
 | |  | | |_| | |_) |___/ ___ \ |_| | |_| | |  | |
 |_|  |_|____/|____/   /_/   \_\___/|____/___| |_|

MDB AUDIT 🔍 - Access to SQL Migration Analyzer
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lg, props, err := log.InitLogger(&log.Config{Level: viper.GetString("log.level")})
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		log.ReplaceGlobals(lg, props)
		Logger = lg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if Logger != nil {
			_ = Logger.Sync()
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mdb-audit.yaml)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))

	setDefaults()
	bindEnv()
}

// bindEnv maps nested keys onto environment variables, so output.dir
// reads OUTPUT_DIR.
func bindEnv() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("mdb-audit")
		viper.SetConfigType("yaml")
	}

	bindEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
