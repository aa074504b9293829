package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"stracetui/internal/trace"
)

// traceConfig reads the --trace* persistent flags. A bare --trace FILE turns
// on phase level.
func traceConfig(cmd *cobra.Command) (trace.Config, error) {
	flags := cmd.Root().PersistentFlags()
	var cfg trace.Config
	var err error

	cfg.OutputPath, _ = flags.GetString("trace")
	cfg.RingSize, _ = flags.GetInt("trace-ring-size")
	cfg.Heartbeat, _ = flags.GetDuration("trace-heartbeat")

	levelStr, _ := flags.GetString("trace-level")
	if cfg.Level, err = trace.ParseLevel(levelStr); err != nil {
		return cfg, err
	}
	if cfg.Level == trace.LevelOff && cfg.OutputPath != "" {
		cfg.Level = trace.LevelPhase
	}
	modeStr, _ := flags.GetString("trace-mode")
	if cfg.Mode, err = trace.ParseMode(modeStr); err != nil {
		return cfg, err
	}
	formatStr, _ := flags.GetString("trace-format")
	if cfg.Format, err = trace.ParseFormat(formatStr); err != nil {
		return cfg, err
	}
	if cfg.Format == trace.FormatAuto {
		cfg.Format = trace.FormatForPath(cfg.OutputPath)
	}
	return cfg, nil
}

// setupTracing installs the tracer in the command context and returns the
// func that stops the heartbeat, dumps the ring and closes the output.
func setupTracing(cmd *cobra.Command) (func(), error) {
	cfg, err := traceConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)
	heartbeat := trace.StartHeartbeat(tracer, cfg.Heartbeat)

	stderr := cmd.ErrOrStderr()
	return func() {
		heartbeat.Stop()
		// в режиме ring события лежат только в памяти
		if ring, ok := trace.Ring(tracer); ok && cfg.Mode == trace.ModeRing {
			if err := dumpRing(ring, cfg.OutputPath, cfg.Format); err != nil {
				fmt.Fprintf(stderr, "trace: dump: %v\n", err)
			}
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: close: %v\n", err)
		}
	}, nil
}

func dumpRing(ring *trace.RingTracer, path string, format trace.Format) error {
	var w io.Writer = os.Stderr
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return ring.Dump(w, format)
}
