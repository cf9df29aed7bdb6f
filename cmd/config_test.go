package cmd_test

import (
	"testing"

	"github.com/spf13/viper"

	"mdb-audit/cmd"
)

func TestGetActiveDBConfig(t *testing.T) {
	defer viper.Set("databases", nil)

	viper.Set("databases", []map[string]any{
		{"name": "pg", "driver": "postgres", "dsn": "postgres://x", "active": false},
		{"name": "ms", "driver": "sqlserver", "dsn": "sqlserver://y", "schema": "dbo", "active": true},
	})
	got, err := cmd.GetActiveDBConfig()
	if err != nil {
		t.Fatalf("GetActiveDBConfig: %v", err)
	}
	if got.Name != "ms" || got.Driver != "sqlserver" || got.Schema != "dbo" {
		t.Errorf("unexpected config %+v", got)
	}
}

func TestGetActiveDBConfig_Errors(t *testing.T) {
	defer viper.Set("databases", nil)

	viper.Set("databases", []map[string]any{{"name": "pg", "active": false}})
	if _, err := cmd.GetActiveDBConfig(); err == nil {
		t.Error("expected error with no active database")
	}

	viper.Set("databases", []map[string]any{{"name": "a", "active": true}, {"name": "b", "active": true}})
	if _, err := cmd.GetActiveDBConfig(); err == nil {
		t.Error("expected error with two active databases")
	}
}

func TestNestedKeysReadEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OUTPUT_DIR", dir)
	t.Setenv("TARGET_DRIVER", "mysql")
	t.Setenv("ANALYSIS_REFERENCE_KEY", "ProjectID")

	if got := viper.GetString("output.dir"); got != dir {
		t.Errorf("output.dir = %q, want %q", got, dir)
	}
	if got := viper.GetString("target.driver"); got != "mysql" {
		t.Errorf("target.driver = %q, want mysql", got)
	}
	if got := viper.GetString("analysis.reference_key"); got != "ProjectID" {
		t.Errorf("analysis.reference_key = %q, want ProjectID", got)
	}
}
