package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/procmon/internal/config"
	"github.com/Dicklesworthstone/procmon/internal/identity"
	"github.com/Dicklesworthstone/procmon/internal/model"
	"github.com/Dicklesworthstone/procmon/internal/sampler"
	"github.com/Dicklesworthstone/procmon/internal/source"
	"github.com/Dicklesworthstone/procmon/internal/ui"
)

func main() {
	flagged := config.Default()
	var cfgPath string

	root := &cobra.Command{
		Use:   "procmon",
		Short: "Point-in-time system and process monitor",
		Long: `procmon samples cumulative kernel counters and shows system CPU and
memory utilization, uptime, task counts and a sorted process table.

With no flags it opens a live dashboard (q to quit, s to cycle the sort).
--json prints a single snapshot and exits.

Examples:
  procmon --sort mem --filter '^postgres'
  procmon --json --limit 10 | jq '.processes[].command'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(cfgPath, cmd.Flags(), flagged)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML config file")
	config.Bind(root.Flags(), &flagged)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	src, err := openSource(cfg, source.ClockTicks())
	if err != nil {
		return fmt.Errorf("open %s source: %w", cfg.Source, err)
	}
	dir, err := openDirectory(cfg)
	if err != nil {
		return err
	}
	filter, err := cfg.FilterRegexp()
	if err != nil {
		return err
	}

	snap := sampler.New(src, dir, sampler.CatalogOptions{
		Order:           cfg.Order(),
		Filter:          filter,
		IncludeChildren: cfg.IncludeChildren,
		Workers:         cfg.Workers,
		Logger:          logger,
	})
	if err := snap.Refresh(ctx); err != nil {
		return err
	}
	logger.Info("first snapshot taken", "source", cfg.Source, "processes", len(snap.View().Processes))

	if cfg.JSON {
		s := snap.View()
		s.Interval = cfg.Interval
		return writeJSON(os.Stdout, limit(s, cfg.Limit))
	}
	return ui.RunTUI(snap, cfg)
}

// newLogger picks the log destination: the log file when set, stderr in
// JSON mode, nowhere while the dashboard owns the terminal.
func newLogger(cfg config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case cfg.JSON:
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

func openDirectory(cfg config.Config) (identity.Directory, error) {
	if cfg.Passwd == "" {
		return identity.NewSystem(), nil
	}
	p, err := identity.LoadPasswd(cfg.Passwd)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// limit keeps the first n processes; n <= 0 keeps all.
func limit(s model.Sample, n int) model.Sample {
	if n > 0 && n < len(s.Processes) {
		s.Processes = s.Processes[:n]
	}
	return s
}

func writeJSON(w io.Writer, s model.Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
