package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"mdb-audit/internal/analyze"
	"mdb-audit/internal/dialect"
	"mdb-audit/internal/mdb"
	"mdb-audit/internal/profile"
)

type DBConfig struct {
	Name   string `mapstructure:"name"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Schema string `mapstructure:"schema"`
	Active bool   `mapstructure:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

func setDefaults() {
	def := analyze.DefaultConfig()

	viper.SetDefault("log.level", "info")
	viper.SetDefault("source.path", "")
	viper.SetDefault("output.dir", "migration_analysis")
	viper.SetDefault("tool.bin_dir", "")
	viper.SetDefault("tool.system_prefix", mdb.DefaultSystemPrefix)
	viper.SetDefault("target.driver", def.Dialect.Name())
	viper.SetDefault("target.schema", def.Schema)

	viper.SetDefault("analysis.reference_table", def.ReferenceTable)
	viper.SetDefault("analysis.reference_key", def.ReferenceKey)
	viper.SetDefault("analysis.business_keys", def.BusinessKeys)
	viper.SetDefault("analysis.integrity_tables", []string{})
	viper.SetDefault("analysis.sample_values", profile.DefaultOptions.SampleValues)
	viper.SetDefault("analysis.sample_length", profile.DefaultOptions.SampleLength)
	viper.SetDefault("analysis.thresholds.mostly_null_percent", analyze.DefaultThresholds.MostlyNullPercent)
	viper.SetDefault("analysis.thresholds.single_value_min_rows", analyze.DefaultThresholds.SingleValueMinRows)
}

// analysisConfig assembles the heuristics policy from viper.
func analysisConfig() analyze.Config {
	return analyze.Config{
		ReferenceTable:  viper.GetString("analysis.reference_table"),
		ReferenceKey:    viper.GetString("analysis.reference_key"),
		BusinessKeys:    viper.GetStringSlice("analysis.business_keys"),
		IntegrityTables: viper.GetStringSlice("analysis.integrity_tables"),
		Thresholds: analyze.Thresholds{
			MostlyNullPercent:  viper.GetFloat64("analysis.thresholds.mostly_null_percent"),
			SingleValueMinRows: viper.GetInt("analysis.thresholds.single_value_min_rows"),
		},
		Profile: profile.Options{
			SampleValues: viper.GetInt("analysis.sample_values"),
			SampleLength: viper.GetInt("analysis.sample_length"),
		},
		Dialect: dialect.GetDialect(viper.GetString("target.driver")),
		Schema:  viper.GetString("target.schema"),
	}
}
