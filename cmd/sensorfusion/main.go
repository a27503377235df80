package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/obsidianstack/sensorfusion/internal/config"
	"github.com/obsidianstack/sensorfusion/internal/ingest"
	"github.com/obsidianstack/sensorfusion/internal/report"
	"github.com/obsidianstack/sensorfusion/internal/runner"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	f, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.selfCheck {
		fmt.Println("Running automated unit testing")
		ok := selfCheck(os.Stdout)
		fmt.Println("Automated testing has completed")
		if !ok {
			return 1
		}
		return 0
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := loadConfig(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	setupLogger(cfg.Log)

	slog.Info("sensorfusion starting",
		"input", cfg.InputPath,
		"output", cfg.OutputPath,
		"metrics", cfg.MetricsPath,
		"q_support", cfg.Fusion.QSupportValue,
		"principal_ratio", cfg.Fusion.PrincipalComponentRatio,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runOnce(ctx, cfg); err != nil {
		slog.Error("run failed", "err", err)
		if !f.watch {
			return 1
		}
	}
	if !f.watch {
		return 0
	}

	paths := []string{cfg.InputPath}
	if fileExists(f.configPath) {
		paths = append(paths, f.configPath)
	}
	err = config.Watch(ctx, paths, func(changed string) {
		if changed == f.configPath {
			next, err := loadConfig(f)
			if err != nil {
				slog.Error("config reload failed, keeping previous config", "err", err)
				return
			}
			if next.InputPath != cfg.InputPath {
				slog.Warn("input_path changed; restart to watch the new file",
					"old", cfg.InputPath, "new", next.InputPath)
			}
			cfg = next
			setupLogger(cfg.Log)
		}
		if err := runOnce(ctx, cfg); err != nil {
			slog.Error("run failed", "err", err)
		}
	})
	if err != nil {
		slog.Error("watcher stopped", "err", err)
		return 1
	}
	slog.Info("sensorfusion shutting down")
	return 0
}

// runOnce processes the whole input file with a fresh store and run ID.
func runOnce(ctx context.Context, cfg *config.Config) error {
	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	out, err := report.OpenAppend(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	sinks := []runner.Sink{report.NewTextWriter(out)}
	var metrics *report.MetricsWriter
	if cfg.MetricsPath != "" {
		metrics = report.NewMetricsWriter()
		sinks = append(sinks, metrics)
	}

	r, err := runner.New(cfg, sinks...)
	if err != nil {
		return err
	}
	sum, runErr := r.Run(ctx, ingest.NewReader(in))

	if metrics != nil && sum.Cycles > 0 {
		if err := metrics.WriteFile(cfg.MetricsPath); err != nil {
			slog.Error("metrics snapshot not written", "path", cfg.MetricsPath, "err", err)
		}
	}

	attrs := []any{
		"run_id", sum.RunID,
		"records", sum.Records,
		"cycles", sum.Cycles,
		"failed", sum.Failed(),
	}
	if sum.Last != nil && sum.Last.Result != nil {
		attrs = append(attrs, "last_value", sum.Last.Result.Value)
	}
	slog.Info("run summary", attrs...)
	return runErr
}

// loadConfig reads the config file, or defaults when the default path is
// absent, then applies CLI overrides and validates.
func loadConfig(f *cliFlags) (*config.Config, error) {
	var cfg *config.Config
	if !f.set["config"] && !fileExists(f.configPath) {
		cfg = config.Default()
	} else {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogger(lc config.LogConfig) {
	opts := &slog.HandlerOptions{Level: lc.SlogLevel()}
	var h slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if lc.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
