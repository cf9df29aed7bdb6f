package mdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"mdb-audit/internal/profile"
	"mdb-audit/internal/schema"
)

const (
	ToolTables  = "mdb-tables"
	ToolQueries = "mdb-queries"
	ToolSchema  = "mdb-schema"
	ToolExport  = "mdb-export"

	// DefaultSystemPrefix marks Access internal tables.
	DefaultSystemPrefix = "MSys"

	maxQuerySQL = 500
)

var (
	ErrToolMissing   = errors.New("mdbtools not installed (run: sudo apt install mdbtools)")
	ErrSourceMissing = errors.New("database not found")
)

// Client runs mdbtools against one Access database file.
type Client struct {
	runner       Runner
	path         string
	log          *zap.Logger
	SystemPrefix string
}

// New verifies that the tools can be started and the source file exists.
// Both failures are fatal for a run.
func New(ctx context.Context, runner Runner, path string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := runner.Run(ctx, ToolTables, "--version"); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrToolMissing, err)
		}
		// The binary started; older releases just reject --version.
		log.Debug("mdb-tables --version failed", zap.Error(err))
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("checking database %s: %w", path, err)
	}

	return &Client{
		runner:       runner,
		path:         path,
		log:          log,
		SystemPrefix: DefaultSystemPrefix,
	}, nil
}

// Path returns the source database path.
func (c *Client) Path() string {
	return c.path
}

func (c *Client) run(ctx context.Context, tool string, args ...string) ([]byte, error) {
	return c.runner.Run(ctx, tool, append([]string{c.path}, args...)...)
}

// Command runs `tool <db> args...` and returns stdout. A failed call is
// logged and yields empty output so the caller can continue with partial
// data.
func (c *Client) Command(ctx context.Context, tool string, args ...string) string {
	out, err := c.run(ctx, tool, args...)
	if err != nil {
		c.log.Warn("command failed", zap.String("tool", tool), zap.Strings("args", args), zap.Error(err))
		return ""
	}
	return string(out)
}

// Tables lists user tables.
func (c *Client) Tables(ctx context.Context) []string {
	return ParseTableList(c.Command(ctx, ToolTables, "-1"), c.SystemPrefix)
}

// Queries lists saved queries with their SQL. Not every mdbtools build
// supports mdb-queries, so an empty list is normal.
func (c *Client) Queries(ctx context.Context) []schema.SavedQuery {
	queries := []schema.SavedQuery{}
	for _, name := range ParseLines(c.Command(ctx, ToolQueries, "-L")) {
		queries = append(queries, schema.SavedQuery{Name: name, Type: "QUERY"})
	}
	for i := range queries {
		sql := strings.TrimSpace(c.Command(ctx, ToolQueries, queries[i].Name))
		if r := []rune(sql); len(r) > maxQuerySQL {
			sql = string(r[:maxQuerySQL])
		}
		queries[i].SQL = sql
	}
	return queries
}

// Relationships returns the declared foreign key statements.
func (c *Client) Relationships(ctx context.Context) []schema.Relationship {
	return ParseRelationships(c.Command(ctx, ToolSchema, "--relationships"))
}

// TableSchema returns the columns of one table and its declared primary key.
func (c *Client) TableSchema(ctx context.Context, table string) ([]schema.ColumnInfo, string) {
	return ParseCreateTable(c.Command(ctx, ToolSchema, "-T", table))
}

// NativeSchema returns mdb-schema's own DDL for the given backend.
func (c *Client) NativeSchema(ctx context.Context, backend string) string {
	return c.Command(ctx, ToolSchema, backend)
}

// Export reads every row of a table into memory.
func (c *Client) Export(ctx context.Context, table string) (*profile.Frame, error) {
	out, err := c.run(ctx, ToolExport, table)
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", table, err)
	}
	frame, err := profile.ParseCSV(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parsing export of %s: %w", table, err)
	}
	return frame, nil
}
